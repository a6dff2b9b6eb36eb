package game

import (
	"fmt"
	"github.com/jmcvetta/randutil"
	"golang.org/x/exp/maps"
	"math/rand"
	"sort"
	"sync"
	"time"
)

type MarketEventType string

const (
	PriceSpike MarketEventType = "PriceSpike"
	PriceCrash MarketEventType = "PriceCrash"
	Shortage   MarketEventType = "Shortage"
	NewsEvent  MarketEventType = "NewsEvent"
)

const DefaultEventChance = 0.15

// MarketEvent temporarily scales one cargo price at one airport.
type MarketEvent struct {
	Type           MarketEventType `json:"event_type"`
	CargoID        string          `json:"affected_cargo"`
	AirportID      string          `json:"affected_airport"`
	Multiplier     float64         `json:"price_multiplier"`
	DurationTurns  int             `json:"duration_turns"`
	TurnsRemaining int             `json:"turns_remaining"`
	Description    string          `json:"description"`
	PriceBefore    int             `json:"price_before"`
}

type eventShape struct {
	minMult, maxMult   float64
	minTurns, maxTurns int
}

var eventShapes = map[MarketEventType]eventShape{
	PriceSpike: {1.5, 2.5, 3, 7},
	PriceCrash: {0.3, 0.7, 4, 9},
	Shortage:   {1.8, 3.0, 2, 5},
	NewsEvent:  {1.3, 2.0, 5, 11},
}

var eventWeights = []randutil.Choice{
	{Weight: 3, Item: PriceSpike},
	{Weight: 3, Item: PriceCrash},
	{Weight: 2, Item: Shortage},
	{Weight: 2, Item: NewsEvent},
}

// EventEngine rolls random market events. It is safe for concurrent use.
type EventEngine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	chance float64
}

func NewEventEngine(seed int64, chance float64) *EventEngine {
	return &EventEngine{
		rng:    rand.New(rand.NewSource(seed)),
		chance: chance,
	}
}

// Roll returns a new event with probability chance. The event is not applied.
func (e *EventEngine) Roll(airports map[string]Airport, types map[string]CargoType) (MarketEvent, bool) {
	if len(airports) == 0 || len(types) == 0 {
		return MarketEvent{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rng.Float64() >= e.chance {
		return MarketEvent{}, false
	}

	choice, ok := weightedChoice(e.rng, eventWeights)
	if !ok {
		return MarketEvent{}, false
	}
	kind := choice.Item.(MarketEventType)
	shape := eventShapes[kind]

	airportIDs := maps.Keys(airports)
	sort.Strings(airportIDs)
	cargoIDs := maps.Keys(types)
	sort.Strings(cargoIDs)

	airport := airports[airportIDs[e.rng.Intn(len(airportIDs))]]
	cargo := types[cargoIDs[e.rng.Intn(len(cargoIDs))]]

	mult := shape.minMult + e.rng.Float64()*(shape.maxMult-shape.minMult)
	if kind == NewsEvent && e.rng.Float64() >= 0.6 {
		mult = 0.5 + e.rng.Float64()*0.3
	}
	turns := shape.minTurns + e.rng.Intn(shape.maxTurns-shape.minTurns+1)

	return MarketEvent{
		Type:           kind,
		CargoID:        cargo.ID,
		AirportID:      airport.ID,
		Multiplier:     mult,
		DurationTurns:  turns,
		TurnsRemaining: turns,
		Description:    describe(kind, mult, cargo.Name, airport.Name),
	}, true
}

// weightedChoice is randutil.WeightedChoice drawn from rng instead of the
// global source, so a seeded engine replays the same event types.
func weightedChoice(rng *rand.Rand, choices []randutil.Choice) (randutil.Choice, bool) {
	total := 0
	for _, c := range choices {
		total += c.Weight
	}
	if total <= 0 {
		return randutil.Choice{}, false
	}
	r := rng.Intn(total)
	for _, c := range choices {
		r -= c.Weight
		if r < 0 {
			return c, true
		}
	}
	return randutil.Choice{}, false
}

func describe(kind MarketEventType, mult float64, cargo string, airport string) string {
	switch kind {
	case PriceSpike:
		return fmt.Sprintf("Demand surge: %s prices soar at %s", cargo, airport)
	case PriceCrash:
		return fmt.Sprintf("Oversupply: %s prices collapse at %s", cargo, airport)
	case Shortage:
		return fmt.Sprintf("Shortage: %s is scarce at %s", cargo, airport)
	default:
		if mult > 1 {
			return fmt.Sprintf("Industry news lifts the %s outlook at %s", cargo, airport)
		}
		return fmt.Sprintf("Industry news weighs on %s at %s", cargo, airport)
	}
}

// Apply scales the affected price and remembers the previous one.
func (ev *MarketEvent) Apply(m *Market, at time.Time) bool {
	price, ok := m.CargoPrice(ev.CargoID)
	if !ok {
		return false
	}
	ev.PriceBefore = price
	m.SetCargoPrice(ev.CargoID, int(float64(price)*ev.Multiplier), at)
	return true
}

// TickEvents counts every event down by one turn. Expired events restore the
// price they displaced and are dropped.
func TickEvents(events []MarketEvent, markets map[string]*Market, at time.Time) (active []MarketEvent, expired []MarketEvent) {
	active = make([]MarketEvent, 0, len(events))
	for _, ev := range events {
		ev.TurnsRemaining--
		if ev.TurnsRemaining > 0 {
			active = append(active, ev)
			continue
		}
		if m, ok := markets[ev.AirportID]; ok && ev.PriceBefore > 0 {
			m.SetCargoPrice(ev.CargoID, ev.PriceBefore, at)
		}
		expired = append(expired, ev)
	}
	return active, expired
}
