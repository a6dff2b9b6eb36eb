package core

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"sort"
	"sync"
	"time"
)

// Registry holds every live room behind one mutex. Critical sections are pure
// in-memory work; callers persist the returned snapshots after release.
type Registry struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*Room
	poisoned bool
}

func NewRegistry() *Registry {
	return &Registry{rooms: map[uuid.UUID]*Room{}}
}

// withLock runs fn under the registry lock. A panic in fn poisons the
// registry: this call and every later one fail with ErrLockPoisoned.
func (r *Registry) withLock(fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poisoned {
		return ErrLockPoisoned
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.poisoned = true
			log.Error().Interface("panic", rec).Msg("Panic while holding rooms lock")
			err = fmt.Errorf("%w: %v", ErrLockPoisoned, rec)
		}
	}()

	return fn()
}

func (r *Registry) Create(room *Room) (RoomSnapshot, error) {
	var snap RoomSnapshot
	err := r.withLock(func() error {
		r.rooms[room.ID] = room
		snap = snapshotOrLog(room)
		return nil
	})
	return snap, err
}

// View runs fn against a room without producing a snapshot. fn may still
// touch activity timestamps.
func (r *Registry) View(id uuid.UUID, fn func(*Room) error) error {
	return r.withLock(func() error {
		room, ok := r.rooms[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
		}
		return fn(room)
	})
}

// Apply runs fn against a room and, when fn succeeds, bumps its revision and
// returns a snapshot of the room taken before the lock is released.
func (r *Registry) Apply(id uuid.UUID, fn func(*Room) error) (RoomSnapshot, error) {
	var snap RoomSnapshot
	err := r.withLock(func() error {
		room, ok := r.rooms[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
		}
		if err := fn(room); err != nil {
			return err
		}
		room.Revision++
		snap = snapshotOrLog(room)
		return nil
	})
	return snap, err
}

func (r *Registry) Get(id uuid.UUID) (RoomSummary, error) {
	var summary RoomSummary
	err := r.View(id, func(room *Room) error {
		summary = room.Summary()
		return nil
	})
	return summary, err
}

// List returns every room, oldest first.
func (r *Registry) List() ([]RoomSummary, error) {
	var out []RoomSummary
	err := r.withLock(func() error {
		out = make([]RoomSummary, 0, len(r.rooms))
		for _, room := range r.rooms {
			out = append(out, room.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// RemoveIfEmpty drops the room when no player is online. It reports whether
// the room was removed.
func (r *Registry) RemoveIfEmpty(id uuid.UUID) (bool, error) {
	removed := false
	err := r.withLock(func() error {
		room, ok := r.rooms[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
		}
		if room.OnlineCount() == 0 {
			delete(r.rooms, id)
			removed = true
		}
		return nil
	})
	return removed, err
}

// Idle lists the empty rooms whose last activity is before cutoff.
func (r *Registry) Idle(cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.withLock(func() error {
		for id, room := range r.rooms {
			if room.OnlineCount() == 0 && room.LastActivity().Before(cutoff) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

// Restore seeds the registry with rooms loaded from the store.
func (r *Registry) Restore(rooms map[uuid.UUID]*Room, opts Options) error {
	return r.withLock(func() error {
		for id, room := range rooms {
			room.attach(opts)
			r.rooms[id] = room
		}
		return nil
	})
}

func (r *Registry) Has(id uuid.UUID) bool {
	found := false
	_ = r.withLock(func() error {
		_, found = r.rooms[id]
		return nil
	})
	return found
}

func (r *Registry) Len() int {
	n := 0
	_ = r.withLock(func() error {
		n = len(r.rooms)
		return nil
	})
	return n
}

func snapshotOrLog(room *Room) RoomSnapshot {
	snap, err := room.snapshot()
	if err != nil {
		log.Error().Err(err).Str("room", room.ID.String()).Msg("Could not snapshot room")
	}
	return snap
}
