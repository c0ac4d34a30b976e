package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// publishLoop overwrites the session's playback record on a fixed interval
// while hosting. Best-effort: a failed publish is dropped, the next tick
// tries again.
func (s *Service) publishLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.PublishInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.publishTick(ctx)
		}
	}
}

func (s *Service) publishTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if s.role != core.RoleHost {
		s.mu.Unlock()
		return
	}
	code := s.code
	s.mu.Unlock()

	pb := s.capturePlayback()
	if err := s.store.Write(ctx, playbackPath(code), pb); err != nil {
		log.Debug().Err(err).Str("module", "app.hostloop").Msg("publish skipped")
	}
}

// capturePlayback samples the local player, including a scan of the upcoming
// queue for the first track that isn't the current one. A failed snapshot
// publishes an empty state rather than aborting the tick.
func (s *Service) capturePlayback() domain.PlaybackState {
	ts := s.now().UnixMilli()
	snap, err := s.player.Snapshot()
	if err != nil {
		return domain.PlaybackState{TS: ts}
	}
	st := domain.PlaybackState{
		URI:     snap.URI,
		Name:    snap.Name,
		Pos:     snap.Pos,
		Playing: snap.Playing,
		TS:      ts,
	}
	st.NextTrack = nextQueued(snap)
	return st
}

func nextQueued(snap core.PlayerSnapshot) *domain.NextTrack {
	for _, q := range snap.Queue {
		if q.URI != "" && q.URI != snap.URI {
			return &domain.NextTrack{Title: q.Title, ArtistName: q.ArtistName, ImageURL: q.ImageURL}
		}
	}
	return nil
}

// hostPollLoop re-reads the session to track membership and to detect that
// ownership was transferred away, in which case the client demotes itself
// without any push from the store.
func (s *Service) hostPollLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.HostPollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.hostPollTick(ctx)
		}
	}
}

func (s *Service) hostPollTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if s.role != core.RoleHost {
		s.mu.Unlock()
		return
	}
	code, selfID := s.code, s.self.ID
	s.mu.Unlock()

	var sess domain.Session
	found, err := s.store.Read(ctx, sessionPath(code), &sess)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.hostloop").Msg("poll skipped")
		return
	}
	if !found {
		return
	}
	if sess.Host != selfID {
		s.notify.Notify(core.EventInfo, "You are no longer the host")
		s.switchToGuest()
		return
	}
	s.reconcileMembers(memberViews(&sess))
}
