package core

import (
	"context"
	"github.com/rs/zerolog/log"
	"time"
)

// SweepIdleRooms removes empty rooms whose last activity is older than ttl,
// both from memory and from the store. It returns how many were removed.
func (s *Service) SweepIdleRooms(ttl time.Duration) (int, error) {
	ids, err := s.rooms.Idle(s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		// someone may have rejoined since Idle released the lock
		ok, err := s.rooms.RemoveIfEmpty(id)
		if err != nil || !ok {
			continue
		}
		removed++
		s.feed.Close(id)

		if s.store != nil {
			if err := s.store.DeleteRoom(id); err != nil {
				log.Warn().Err(err).Str("room", id.String()).Msg("Could not delete stored room")
			}
		}
		log.Info().Str("room", id.String()).Msg("Idle room removed")
	}
	return removed, nil
}

// RunJanitor sweeps idle rooms every interval until ctx is done. A ttl of
// zero disables it.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration, ttl time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepIdleRooms(ttl); err != nil {
				log.Error().Err(err).Msg("Idle room sweep failed")
			}
		}
	}
}
