package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// invitePollLoop watches the local user's mailbox. It runs for the lifetime
// of the service but does nothing while a session is active.
func (s *Service) invitePollLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.InvitePollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.invitePollTick(ctx)
		}
	}
}

func (s *Service) invitePollTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if s.active() {
		return
	}
	self := s.selfID()

	var box map[domain.SessionCode]domain.Invite
	found, err := s.store.Read(ctx, inviteBoxPath(self), &box)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.invites").Msg("mailbox poll skipped")
		return
	}
	if !found {
		return
	}

	for code, inv := range box {
		if inv.Expired(s.now(), s.cfg.InviteTTL) {
			// Expired entries are never surfaced; whoever sees one cleans up.
			_ = s.store.Delete(ctx, invitePath(self, code))
			s.mu.Lock()
			delete(s.pending, code)
			s.mu.Unlock()
			continue
		}
		s.mu.Lock()
		_, seen := s.pending[code]
		if !seen {
			s.pending[code] = inv
		}
		s.mu.Unlock()
		if !seen {
			s.notify.Notify(core.EventInfo, fmt.Sprintf("Invite from %s", inv.HostName))
		}
	}
}

// PendingInvites lists invitations awaiting an accept/ignore decision,
// filtering anything that expired since it was surfaced.
func (s *Service) PendingInvites() []core.InviteView {
	now := s.now()
	s.mu.Lock()
	out := make([]core.InviteView, 0, len(s.pending))
	for code, inv := range s.pending {
		if inv.Expired(now, s.cfg.InviteTTL) {
			delete(s.pending, code)
			continue
		}
		out = append(out, core.InviteView{Code: code, HostName: inv.HostName, TS: inv.TS})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TS > out[j].TS })
	return out
}

// AcceptInvite deletes the mailbox entry and joins the inviting session.
func (s *Service) AcceptInvite(ctx context.Context, code domain.SessionCode) error {
	s.mu.Lock()
	inv, ok := s.pending[code]
	delete(s.pending, code)
	s.mu.Unlock()
	if !ok {
		return core.ErrInviteNotFound
	}
	if err := s.store.Delete(ctx, invitePath(s.selfID(), code)); err != nil {
		log.Warn().Err(err).Str("module", "app.invites").Msg("delete accepted invite")
	}
	return s.JoinSession(ctx, inv.SessionID)
}

// IgnoreInvite deletes the mailbox entry without joining.
func (s *Service) IgnoreInvite(ctx context.Context, code domain.SessionCode) error {
	s.mu.Lock()
	_, ok := s.pending[code]
	delete(s.pending, code)
	s.mu.Unlock()
	if !ok {
		return core.ErrInviteNotFound
	}
	if err := s.store.Delete(ctx, invitePath(s.selfID(), code)); err != nil {
		log.Warn().Err(err).Str("module", "app.invites").Msg("delete ignored invite")
	}
	return nil
}
