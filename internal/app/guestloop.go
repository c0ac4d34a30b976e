package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// guestPollLoop re-reads the session on a fixed interval and reconciles local
// playback to the host's published state. Check order per tick: session gone,
// promoted, kicked, then membership + playback.
func (s *Service) guestPollLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.GuestPollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.guestPollTick(ctx)
		}
	}
}

func (s *Service) guestPollTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if s.role != core.RoleGuest {
		s.mu.Unlock()
		return
	}
	code, selfID := s.code, s.self.ID
	s.mu.Unlock()

	var sess domain.Session
	found, err := s.store.Read(ctx, sessionPath(code), &sess)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.guestloop").Msg("poll skipped")
		return
	}
	if !found {
		s.notify.Notify(core.EventInfo, "Session ended")
		s.resetToIdle()
		return
	}
	if sess.Host == selfID {
		s.notify.Notify(core.EventSuccess, "You are now the host")
		s.switchToHost()
		return
	}
	if _, ok := sess.Members[selfID]; !ok {
		s.notify.Notify(core.EventError, "You have been kicked from the session")
		s.resetToIdle()
		return
	}

	s.reconcileMembers(memberViews(&sess))
	if sess.Playback != nil {
		s.applyPlayback(ctx, sess.Playback)
	}
}

// applyPlayback reconciles the local player to the host's published state.
// Every player call is best-effort; a flaky player must not break the loop.
func (s *Service) applyPlayback(ctx context.Context, pb *domain.PlaybackState) {
	if pb.NextTrack != nil {
		s.mu.Lock()
		s.nextTrack = pb.NextTrack
		s.mu.Unlock()
	}
	if pb.URI == "" {
		return
	}
	snap, err := s.player.Snapshot()
	if err != nil {
		log.Debug().Err(err).Str("module", "app.guestloop").Msg("player unavailable")
		return
	}

	if snap.URI != pb.URI {
		_ = s.player.PlayURI(ctx, pb.URI)
	}

	expected := pb.ExpectedPos(s.now())
	tolerance := s.cfg.DriftTolerance.Milliseconds()
	if diff := snap.Pos - expected; diff > tolerance || diff < -tolerance {
		_ = s.player.Seek(ctx, expected)
	}

	switch {
	case pb.Playing && !snap.Playing:
		_ = s.player.Play(ctx)
	case !pb.Playing && snap.Playing:
		_ = s.player.Pause(ctx)
	}
}
