package core

import (
	"github.com/google/uuid"
	"sync"
)

type RoomEventType uint

const (
	Joined RoomEventType = iota
	Left
	Traveled
	Traded
	Refueled
	Posted
	Started
)

var roomEventNames = [...]string{"joined", "left", "traveled", "traded", "refueled", "posted", "started"}

func (t RoomEventType) String() string {
	if int(t) < len(roomEventNames) {
		return roomEventNames[t]
	}
	return "unknown"
}

func (t RoomEventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// RoomEvent tells subscribers that something changed in a room.
type RoomEvent struct {
	Type     RoomEventType `json:"type"`
	RoomID   uuid.UUID     `json:"room_id"`
	PlayerID uuid.UUID     `json:"player_id"`
	Turn     int           `json:"turn_number"`
}

const feedBuffer = 16

// Feed fans room events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Feed struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[int]chan RoomEvent
	next int
}

func NewFeed() *Feed {
	return &Feed{subs: map[uuid.UUID]map[int]chan RoomEvent{}}
}

// Subscribe returns the event channel for roomID and a cancel func that
// closes it. Cancel is safe to call more than once.
func (f *Feed) Subscribe(roomID uuid.UUID) (<-chan RoomEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++

	c := make(chan RoomEvent, feedBuffer)
	if f.subs[roomID] == nil {
		f.subs[roomID] = map[int]chan RoomEvent{}
	}
	f.subs[roomID][id] = c

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[roomID][id]; !ok {
			return
		}
		delete(f.subs[roomID], id)
		if len(f.subs[roomID]) == 0 {
			delete(f.subs, roomID)
		}
		close(c)
	}
	return c, cancel
}

func (f *Feed) Publish(ev RoomEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.subs[ev.RoomID] {
		select {
		case c <- ev:
		default:
		}
	}
}

// Close drops every subscriber of roomID, e.g. when the room is removed.
func (f *Feed) Close(roomID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.subs[roomID] {
		close(c)
	}
	delete(f.subs, roomID)
}
