package core

import (
	"errors"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// memStore records what the service persists. fail makes every write error.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID][]byte
	revs     map[uuid.UUID]int64
	sessions map[uuid.UUID]PlayerSession
	writes   int
	fail     bool
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    map[uuid.UUID][]byte{},
		revs:     map[uuid.UUID]int64{},
		sessions: map[uuid.UUID]PlayerSession{},
	}
}

var errDiskFull = errors.New("disk full")

func (m *memStore) UpsertRoom(snap RoomSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail {
		return errDiskFull
	}
	if rev, ok := m.revs[snap.ID]; ok && rev >= snap.Revision {
		return nil
	}
	m.rooms[snap.ID] = snap.Data
	m.revs[snap.ID] = snap.Revision
	return nil
}

func (m *memStore) UpsertSession(session PlayerSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDiskFull
	}
	m.sessions[session.PlayerID] = session
	return nil
}

func (m *memStore) DeleteRoom(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	delete(m.revs, id)
	return nil
}

func (m *memStore) LoadAllRooms() (map[uuid.UUID]*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]*Room{}
	for id, data := range m.rooms {
		room, err := DecodeRoom(data)
		if err != nil {
			continue
		}
		out[id] = room
	}
	return out, nil
}

func (m *memStore) LoadAllSessions() (map[uuid.UUID]PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]PlayerSession{}
	for id, s := range m.sessions {
		out[id] = s
	}
	return out, nil
}

func (m *memStore) FindSessionsByPlayerName(name string) ([]PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PlayerSession
	for _, s := range m.sessions {
		if s.PlayerName == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) storedRoom(id uuid.UUID) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.rooms[id]
	if !ok {
		return nil, false
	}
	room, err := DecodeRoom(data)
	return room, err == nil
}

func (m *memStore) roomWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func newTestService(t *testing.T, store Store, opts Options) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Store: store, RoomOptions: opts})
	require.NoError(t, err)
	return svc
}

func createRoom(t *testing.T, svc *Service, maxPlayers int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	resp, err := svc.CreateRoom(CreateRoomRequest{Name: "Skies", HostPlayerName: "Host", MaxPlayers: &maxPlayers})
	require.NoError(t, err)
	return resp.Room.ID, resp.HostPlayerID
}

func playerState(t *testing.T, svc *Service, roomID uuid.UUID, playerID uuid.UUID) PlayerState {
	t.Helper()
	var out PlayerState
	err := svc.rooms.View(roomID, func(r *Room) error {
		p, ok := r.Player(playerID)
		require.True(t, ok)
		out = *p
		out.Player.Cargo = game.CargoInventory(p.Player.Cargo.Clone())
		return nil
	})
	require.NoError(t, err)
	return out
}

func setPlayer(t *testing.T, svc *Service, roomID uuid.UUID, playerID uuid.UUID, fn func(*game.Player)) {
	t.Helper()
	_, err := svc.rooms.Apply(roomID, func(r *Room) error {
		p, ok := r.Player(playerID)
		require.True(t, ok)
		fn(&p.Player)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateRoom(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, Options{})

	resp, err := svc.CreateRoom(CreateRoomRequest{Name: "Skies", HostPlayerName: "Host"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPlayers, resp.Room.MaxPlayers)
	assert.Equal(t, 1, resp.Room.CurrentPlayers)
	assert.Equal(t, "Host", resp.Room.HostPlayerName)
	assert.True(t, resp.Room.IsJoinable)

	host := playerState(t, svc, resp.Room.ID, resp.HostPlayerID)
	assert.Equal(t, "JFK", host.Player.CurrentAirport)
	assert.Equal(t, game.StartingMoney, host.Player.Money)

	assert.Contains(t, store.rooms, resp.Room.ID)
	assert.Contains(t, store.sessions, resp.HostPlayerID)

	rooms, err := svc.ListRooms()
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestCreateRoomValidation(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	for _, n := range []int{0, 9, -1} {
		n := n
		_, err := svc.CreateRoom(CreateRoomRequest{Name: "x", HostPlayerName: "y", MaxPlayers: &n})
		assert.ErrorIs(t, err, ErrInvalidMaxPlayers)
	}

	_, err := svc.CreateRoom(CreateRoomRequest{Name: " ", HostPlayerName: "y"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.CreateRoom(CreateRoomRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestJoinLeaveRejoinKeepsIdentity(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, newMemStore(), Options{Clock: clock.Now})
	roomID, host := createRoom(t, svc, 4)

	host0 := playerState(t, svc, roomID, host)
	assert.Equal(t, "JFK", host0.Player.CurrentAirport)
	assert.Equal(t, 5000, host0.Player.Money)

	joined, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob", StartingAirport: "LAX"})
	require.NoError(t, err)
	require.True(t, joined.Success, joined.Message)
	before := playerState(t, svc, roomID, joined.PlayerID)

	clock.Advance(time.Second)
	left, err := svc.LeaveRoom(roomID, joined.PlayerID)
	require.NoError(t, err)
	assert.True(t, left.Success)
	assert.False(t, playerState(t, svc, roomID, joined.PlayerID).Online)

	clock.Advance(time.Second)
	rejoined, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)
	require.True(t, rejoined.Success, rejoined.Message)
	assert.Equal(t, joined.PlayerID, rejoined.PlayerID)

	after := playerState(t, svc, roomID, rejoined.PlayerID)
	assert.True(t, after.Online)
	assert.Equal(t, before.Player.Money, after.Player.Money)
	assert.Equal(t, before.Player.Fuel, after.Player.Fuel)
	assert.Equal(t, "LAX", after.Player.CurrentAirport)
	assert.Equal(t, before.JoinedAt, after.JoinedAt)
}

func TestJoinRejectionsAreNotErrors(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, _ := createRoom(t, svc, 2)

	ok, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)
	require.True(t, ok.Success)

	dup, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Cat"})
	require.NoError(t, err)
	assert.False(t, dup.Success)
	assert.Equal(t, "Room is full", dup.Message)
	assert.Equal(t, uuid.Nil, dup.PlayerID)

	_, err = svc.JoinRoom(uuid.New(), JoinRoomRequest{PlayerName: "Bob"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: ""})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestJoinFreshDuplicateName(t *testing.T) {
	svc := newTestService(t, nil, Options{Clock: newFakeClock().Now})
	roomID, _ := createRoom(t, svc, 4)

	_, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)

	resp, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Player name already taken in this room", resp.Message)
}

func TestJoinUnknownAirport(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, _ := createRoom(t, svc, 4)

	_, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob", StartingAirport: "zzz"})
	assert.ErrorIs(t, err, ErrUnknownAirport)
}

func TestFuelPurchaseOverCapacity(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	setPlayer(t, svc, roomID, host, func(p *game.Player) { p.Fuel = 120 })

	resp, err := svc.BuyFuel(roomID, host, FuelRequest{Quantity: 200})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "80")
	assert.Nil(t, resp.Cost)

	p := playerState(t, svc, roomID, host)
	assert.Equal(t, 5000, p.Player.Money)
	assert.Equal(t, 120, p.Player.Fuel)
}

func TestFuelPurchase(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)

	resp, err := svc.BuyFuel(roomID, host, FuelRequest{Quantity: 67})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 67*game.DefaultFuelPrice, *resp.Cost)
	assert.Equal(t, 200, *resp.NewFuel)
	assert.Equal(t, 5000-67*50, *resp.NewMoney)

	full, err := svc.BuyFuel(roomID, host, FuelRequest{Quantity: 1})
	require.NoError(t, err)
	assert.False(t, full.Success)
	assert.Equal(t, "Fuel tank is already full", full.Message)

	_, err = svc.BuyFuel(roomID, host, FuelRequest{Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestFuelPurchaseInsufficientFunds(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	setPlayer(t, svc, roomID, host, func(p *game.Player) { p.Money = 100 })

	resp, err := svc.BuyFuel(roomID, host, FuelRequest{Quantity: 10})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient funds for fuel purchase", resp.Message)
}

func TestConcurrentTradesNeverDoubleSpend(t *testing.T) {
	svc := newTestService(t, newMemStore(), Options{})
	roomID, host := createRoom(t, svc, 4)

	// 6 electronics at 500 cost 3000, more than half of 5000
	var wins atomic.Int32
	var wg conc.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Go(func() {
			resp, err := svc.Trade(roomID, host, TradeRequest{CargoType: "electronics", Quantity: 6, Action: Buy})
			assert.NoError(t, err)
			if resp.Success {
				wins.Add(1)
			} else {
				assert.Equal(t, "Insufficient funds", resp.Message)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	p := playerState(t, svc, roomID, host)
	assert.Equal(t, 2000, p.Player.Money)
	assert.Equal(t, 6, p.Player.Cargo.Quantity("electronics"))
}

func TestTradeFailureLeavesStateUntouched(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	setPlayer(t, svc, roomID, host, func(p *game.Player) { p.Money = 100000 })
	before := playerState(t, svc, roomID, host)

	resp, err := svc.Trade(roomID, host, TradeRequest{CargoType: "luxury", Quantity: 101, Action: Buy})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient funds", resp.Message)

	resp, err = svc.Trade(roomID, host, TradeRequest{CargoType: "materials", Quantity: 251, Action: Buy})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient cargo capacity", resp.Message)

	resp, err = svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1, Action: Sell})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient cargo to sell", resp.Message)

	after := playerState(t, svc, roomID, host)
	assert.Equal(t, before.Player, after.Player)
}

func TestTradeHugeQuantityIsRejected(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	before := playerState(t, svc, roomID, host)

	resp, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1 << 62, Action: Buy})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient funds", resp.Message)
	assert.Equal(t, before.Player, playerState(t, svc, roomID, host).Player)

	setPlayer(t, svc, roomID, host, func(p *game.Player) { p.Money = math.MaxInt })
	resp, err = svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1 << 62, Action: Buy})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient cargo capacity", resp.Message)

	after := playerState(t, svc, roomID, host)
	assert.Equal(t, math.MaxInt, after.Player.Money)
	assert.Zero(t, after.Player.Cargo.Quantity("food"))

	sell, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1000, Action: Sell})
	require.NoError(t, err)
	assert.False(t, sell.Success)
}

func TestTradeBuyThenSell(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)

	buy, err := svc.Trade(roomID, host, TradeRequest{CargoType: "Food", Quantity: 10, Action: Buy})
	require.NoError(t, err)
	require.True(t, buy.Success, buy.Message)
	assert.Equal(t, 1000, *buy.TransactionAmount)
	assert.Equal(t, 4000, *buy.NewMoney)
	assert.Equal(t, map[string]int{"food": 10}, buy.NewInventory)

	sell, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 10, Action: Sell})
	require.NoError(t, err)
	require.True(t, sell.Success, sell.Message)
	assert.Equal(t, 5000, *sell.NewMoney)
	assert.Empty(t, sell.NewInventory)

	state, err := svc.RoomState(roomID, host)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Statistics.CargoTrades)
	assert.Equal(t, 1000, state.Statistics.TotalRevenue)
	assert.Equal(t, "food", state.Statistics.MostProfitableCargo)
}

func TestTradeValidation(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)

	_, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 0, Action: Buy})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1, Action: "Steal"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Trade(roomID, host, TradeRequest{CargoType: "gold", Quantity: 1, Action: Buy})
	assert.ErrorIs(t, err, ErrInvalidCargo)

	_, err = svc.Trade(roomID, uuid.New(), TradeRequest{CargoType: "food", Quantity: 1, Action: Buy})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestTravel(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)

	far, err := svc.Travel(roomID, host, TravelRequest{Destination: "LAX"})
	require.NoError(t, err)
	assert.False(t, far.Success)
	assert.Equal(t, "Insufficient fuel. Need 265 units, have 133", far.Message)

	near, err := svc.Travel(roomID, host, TravelRequest{Destination: "ord"})
	require.NoError(t, err)
	require.True(t, near.Success, near.Message)
	assert.Equal(t, 80, *near.FuelConsumed)
	assert.Equal(t, "ORD", *near.NewLocation)

	p := playerState(t, svc, roomID, host)
	assert.Equal(t, 53, p.Player.Fuel)
	assert.Equal(t, "ORD", p.Player.CurrentAirport)

	state, err := svc.RoomState(roomID, host)
	require.NoError(t, err)
	assert.Equal(t, 2, state.TurnNumber)
	assert.Equal(t, []string{"ORD"}, state.Statistics.AirportsVisited)

	again, err := svc.Travel(roomID, host, TravelRequest{Destination: "ORD"})
	require.NoError(t, err)
	assert.False(t, again.Success)

	_, err = svc.Travel(roomID, host, TravelRequest{Destination: "XYZ"})
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

func TestTravelCheatMode(t *testing.T) {
	svc := newTestService(t, nil, Options{CheatMode: true})
	roomID, host := createRoom(t, svc, 4)

	resp, err := svc.Travel(roomID, host, TravelRequest{Destination: "LAX"})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 0, *resp.FuelConsumed)
	assert.Equal(t, 133, playerState(t, svc, roomID, host).Player.Fuel)
}

func TestMessages(t *testing.T) {
	svc := newTestService(t, nil, Options{BoardSize: 3})
	roomID, host := createRoom(t, svc, 4)
	bob, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob", StartingAirport: "LAX"})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		resp, err := svc.PostMessage(roomID, host, PostMessageRequest{Content: strings.Repeat("x", i+1)})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.NotNil(t, resp.MessageID)
	}
	_, err = svc.PostMessage(roomID, bob.PlayerID, PostMessageRequest{Content: "hello from LAX"})
	require.NoError(t, err)

	jfk, err := svc.Messages(roomID, host, 0)
	require.NoError(t, err)
	assert.Equal(t, "JFK", jfk.AirportID)
	assert.Equal(t, 2, jfk.TotalCount)
	require.Len(t, jfk.Messages, 2)
	assert.Equal(t, "xxxx", jfk.Messages[0].Content)
	assert.Equal(t, "xxx", jfk.Messages[1].Content)

	limited, err := svc.Messages(roomID, host, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Messages, 1)

	lax, err := svc.Messages(roomID, bob.PlayerID, 0)
	require.NoError(t, err)
	require.Len(t, lax.Messages, 1)
	assert.Equal(t, "Bob", lax.Messages[0].AuthorName)

	_, err = svc.PostMessage(roomID, host, PostMessageRequest{Content: ""})
	assert.ErrorIs(t, err, ErrInvalidMessage)
	_, err = svc.PostMessage(roomID, host, PostMessageRequest{Content: strings.Repeat("x", 501)})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestAllPlayersLeavingResetsStatus(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)

	started, err := svc.StartGame(roomID, host)
	require.NoError(t, err)
	require.True(t, started.Success)
	assert.Equal(t, InProgress, started.GameStatus)

	_, err = svc.LeaveRoom(roomID, host)
	require.NoError(t, err)

	summary, err := svc.rooms.Get(roomID)
	require.NoError(t, err)
	assert.Equal(t, WaitingForPlayers, summary.GameStatus)
	assert.Equal(t, 0, summary.CurrentPlayers)

	rooms, err := svc.ListRooms()
	require.NoError(t, err)
	assert.Len(t, rooms, 1, "emptied rooms are kept")
}

func TestStartGameHostOnly(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	bob, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)

	_, err = svc.StartGame(roomID, bob.PlayerID)
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = svc.StartGame(roomID, host)
	require.NoError(t, err)

	again, err := svc.StartGame(roomID, host)
	require.NoError(t, err)
	assert.False(t, again.Success)

	late, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Cat"})
	require.NoError(t, err)
	assert.False(t, late.Success)
	assert.Equal(t, "Game already in progress", late.Message)
}

func TestRoomState(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	_, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob", StartingAirport: "MIA"})
	require.NoError(t, err)

	state, err := svc.RoomState(roomID, host)
	require.NoError(t, err)
	assert.Equal(t, host, state.MyPlayerID)
	assert.Len(t, state.Players, 2)
	require.NotNil(t, state.CurrentMarket)
	assert.Equal(t, "JFK", state.CurrentMarket.AirportID)
	require.Len(t, state.AvailableDestinations, 5)
	assert.Equal(t, "ORD", state.AvailableDestinations[0].AirportID)
	assert.True(t, state.AvailableDestinations[0].CanTravel)
	assert.Equal(t, 80, state.AvailableDestinations[0].FuelRequired)
	for i := 1; i < len(state.AvailableDestinations); i++ {
		assert.LessOrEqual(t, state.AvailableDestinations[i-1].Distance, state.AvailableDestinations[i].Distance)
	}

	var hostInfo PlayerInfo
	for _, p := range state.Players {
		if p.ID == host {
			hostInfo = p
		}
	}
	assert.True(t, hostInfo.IsHost)
	assert.Equal(t, 2, state.RoomInfo.CurrentPlayers)

	_, err = svc.RoomState(roomID, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	_, err = svc.RoomState(uuid.New(), host)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestWatchStateKeepsLeaversOffline(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 1)

	_, err := svc.LeaveRoom(roomID, host)
	require.NoError(t, err)

	state, err := svc.WatchState(roomID, host)
	require.NoError(t, err)
	require.Len(t, state.Players, 1)
	assert.False(t, state.Players[0].IsOnline)
	assert.Equal(t, 0, state.RoomInfo.CurrentPlayers)
	assert.False(t, playerState(t, svc, roomID, host).Online)

	rejoin, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Host"})
	require.NoError(t, err)
	require.True(t, rejoin.Success, rejoin.Message)
	assert.Equal(t, host, rejoin.PlayerID)

	_, err = svc.WatchState(roomID, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	store := newMemStore()
	store.fail = true
	svc := newTestService(t, store, Options{})

	roomID, host := createRoom(t, svc, 4)
	resp, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 1, Action: Buy})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, store.roomWrites())
	assert.Equal(t, 4900, playerState(t, svc, roomID, host).Player.Money)
}

func TestRejectedActionsAreNotPersisted(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, Options{})
	roomID, host := createRoom(t, svc, 4)
	writes := store.roomWrites()

	resp, err := svc.Travel(roomID, host, TravelRequest{Destination: "LAX"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	assert.Equal(t, writes, store.roomWrites())
}

func TestRestoreFromStore(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, Options{})
	roomID, host := createRoom(t, svc, 4)
	_, err := svc.Trade(roomID, host, TradeRequest{CargoType: "food", Quantity: 3, Action: Buy})
	require.NoError(t, err)

	restarted := newTestService(t, store, Options{})
	p := playerState(t, restarted, roomID, host)
	assert.Equal(t, 4700, p.Player.Money)
	assert.Equal(t, 3, p.Player.Cargo.Quantity("food"))

	sessions, err := restarted.FindPlayerSessions("Host")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].RoomName)
	assert.Equal(t, "Skies", *sessions[0].RoomName)
}

func TestFindPlayerSessionsAcrossRooms(t *testing.T) {
	svc := newTestService(t, newMemStore(), Options{})
	roomA, _ := createRoom(t, svc, 4)
	roomB, _ := createRoom(t, svc, 4)

	for _, id := range []uuid.UUID{roomA, roomB} {
		resp, err := svc.JoinRoom(id, JoinRoomRequest{PlayerName: "Bob"})
		require.NoError(t, err)
		require.True(t, resp.Success)
	}

	sessions, err := svc.FindPlayerSessions("Bob")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	_, err = svc.FindPlayerSessions(" ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLeaveClearsSessionRoom(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, _ := createRoom(t, svc, 4)
	bob, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)

	_, err = svc.LeaveRoom(roomID, bob.PlayerID)
	require.NoError(t, err)

	sessions, err := svc.FindPlayerSessions("Bob")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].RoomID)

	_, err = svc.LeaveRoom(roomID, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSweepIdleRooms(t *testing.T) {
	clock := newFakeClock()
	store := newMemStore()
	svc := newTestService(t, store, Options{Clock: clock.Now})
	idle, idleHost := createRoom(t, svc, 4)
	busy, _ := createRoom(t, svc, 4)

	_, err := svc.LeaveRoom(idle, idleHost)
	require.NoError(t, err)

	events, cancel := svc.Feed().Subscribe(idle)
	defer cancel()

	clock.Advance(2 * time.Hour)
	removed, err := svc.SweepIdleRooms(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.rooms.Get(idle)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = svc.rooms.Get(busy)
	assert.NoError(t, err)
	assert.NotContains(t, store.rooms, idle)

	_, open := <-events
	assert.False(t, open)
}

func TestOutOfOrderWritesKeepNewestRoom(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, Options{})
	roomID, host := createRoom(t, svc, 4)

	older, err := svc.rooms.Apply(roomID, func(r *Room) error {
		p, _ := r.Player(host)
		p.Player.Money = 1
		return nil
	})
	require.NoError(t, err)
	newer, err := svc.rooms.Apply(roomID, func(r *Room) error {
		p, _ := r.Player(host)
		p.Player.Money = 2
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, newer.Revision, older.Revision)

	svc.persistRoom(newer)
	svc.persistRoom(older)

	stored, ok := store.storedRoom(roomID)
	require.True(t, ok)
	assert.Equal(t, newer.Revision, stored.Revision)
	p, _ := stored.Player(host)
	assert.Equal(t, 2, p.Player.Money)
}

func TestLateWriteDoesNotResurrectSweptRoom(t *testing.T) {
	clock := newFakeClock()
	store := newMemStore()
	svc := newTestService(t, store, Options{Clock: clock.Now})
	roomID, host := createRoom(t, svc, 4)

	_, err := svc.LeaveRoom(roomID, host)
	require.NoError(t, err)
	late, err := svc.rooms.Apply(roomID, func(*Room) error { return nil })
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	removed, err := svc.SweepIdleRooms(time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	svc.persistRoom(late)
	_, ok := store.storedRoom(roomID)
	assert.False(t, ok)
}

func TestActionsPublishRoomEvents(t *testing.T) {
	svc := newTestService(t, nil, Options{})
	roomID, host := createRoom(t, svc, 4)
	events, cancel := svc.Feed().Subscribe(roomID)
	defer cancel()

	bob, err := svc.JoinRoom(roomID, JoinRoomRequest{PlayerName: "Bob"})
	require.NoError(t, err)
	_, err = svc.Travel(roomID, host, TravelRequest{Destination: "ORD"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, Joined, ev.Type)
	assert.Equal(t, bob.PlayerID, ev.PlayerID)

	ev = <-events
	assert.Equal(t, Traveled, ev.Type)
	assert.Equal(t, 2, ev.Turn)
}
