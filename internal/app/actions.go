package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// CreateSession generates a code, writes a fresh session record with the
// local user as sole member and host, and starts the host loops.
func (s *Service) CreateSession(ctx context.Context) (domain.SessionCode, error) {
	s.mu.Lock()
	if s.role != core.RoleNone {
		s.mu.Unlock()
		return "", core.ErrAlreadyInSession
	}
	self := s.self
	s.mu.Unlock()

	if err := domain.ValidateName(self.Name, s.cfg.MaxNameLength); err != nil {
		return "", err
	}

	code := domain.GenerateCode()
	now := s.now().UnixMilli()
	pb := s.capturePlayback()
	sess := domain.Session{
		Host:     self.ID,
		HostName: self.Name,
		Created:  now,
		Members: map[domain.UserID]domain.MemberRecord{
			self.ID: {Name: self.Name, IsHost: true, Joined: now},
		},
		Playback: &pb,
	}
	if err := s.store.Write(ctx, sessionPath(code), sess); err != nil {
		s.notify.Notify(core.EventError, "Failed to create session")
		return "", fmt.Errorf("create session: %w", err)
	}

	s.mu.Lock()
	s.code = code
	s.members = []core.MemberView{{ID: self.ID, Name: self.Name, IsHost: true}}
	s.prev = nil
	s.pending = make(map[domain.SessionCode]domain.Invite)
	s.mu.Unlock()
	s.switchToHost()

	s.notify.Notify(core.EventSuccess, "Session: "+string(code))
	log.Info().Str("module", "app.session").Str("code", string(code)).Msg("session created")
	return code, nil
}

// JoinSession joins an existing session as a guest. The member cap is checked
// read-then-write: it is a soft limit and concurrent joins can race past it.
func (s *Service) JoinSession(ctx context.Context, rawCode string) error {
	code := domain.NormalizeCode(rawCode)

	s.mu.Lock()
	if s.role != core.RoleNone {
		s.mu.Unlock()
		return core.ErrAlreadyInSession
	}
	self := s.self
	s.mu.Unlock()

	if err := domain.ValidateName(self.Name, s.cfg.MaxNameLength); err != nil {
		return err
	}

	var sess domain.Session
	found, err := s.store.Read(ctx, sessionPath(code), &sess)
	if err != nil {
		s.notify.Notify(core.EventError, "Failed to join session")
		return fmt.Errorf("join session: %w", err)
	}
	if !found {
		s.notify.Notify(core.EventError, "Session not found")
		return core.ErrSessionNotFound
	}
	if sess.MemberCount() >= s.cfg.MaxMembers {
		s.notify.Notify(core.EventError, "Session full")
		return core.ErrSessionFull
	}

	rec := domain.MemberRecord{Name: self.Name, Joined: s.now().UnixMilli()}
	if err := s.store.Write(ctx, memberPath(code, self.ID), rec); err != nil {
		s.notify.Notify(core.EventError, "Failed to join session")
		return fmt.Errorf("join session: %w", err)
	}

	s.mu.Lock()
	s.code = code
	s.members = nil
	s.prev = nil
	s.pending = make(map[domain.SessionCode]domain.Invite)
	s.mu.Unlock()
	s.switchToGuest()

	s.notify.Notify(core.EventSuccess, "Joined: "+string(code))
	log.Info().Str("module", "app.session").Str("code", string(code)).Msg("joined session")
	return nil
}

// LeaveSession stops the role loops first, then deletes the whole session
// record when hosting (ending it for everyone) or just the local member
// entry when a guest. Delete failures are logged, not surfaced: the user is
// leaving either way.
func (s *Service) LeaveSession(ctx context.Context) error {
	s.mu.Lock()
	if s.role == core.RoleNone {
		s.mu.Unlock()
		return core.ErrNotInSession
	}
	role, code, self := s.role, s.code, s.self
	s.stopRoleLocked()
	s.mu.Unlock()

	if role == core.RoleHost {
		if err := s.store.Delete(ctx, sessionPath(code)); err != nil {
			log.Warn().Err(err).Str("module", "app.session").Msg("delete session on leave")
		}
	} else {
		if err := s.store.Delete(ctx, memberPath(code, self.ID)); err != nil {
			log.Warn().Err(err).Str("module", "app.session").Msg("delete member on leave")
		}
	}
	s.resetToIdle()
	s.notify.Notify(core.EventInfo, "Left session")
	return nil
}

// TransferHost hands the session to another member and immediately demotes
// the local client to guest without waiting for the next poll. The
// per-member isHost flags are legacy bookkeeping kept for wire compatibility.
func (s *Service) TransferHost(ctx context.Context, newHostID domain.UserID, newHostName string) error {
	s.mu.Lock()
	if s.role != core.RoleHost {
		s.mu.Unlock()
		return core.ErrNotHost
	}
	code, self := s.code, s.self
	s.mu.Unlock()

	if err := s.store.Write(ctx, hostPath(code), newHostID); err != nil {
		s.notify.Notify(core.EventError, "Transfer failed")
		return fmt.Errorf("transfer host: %w", err)
	}
	if err := s.store.Write(ctx, hostNamePath(code), newHostName); err != nil {
		s.notify.Notify(core.EventError, "Transfer failed")
		return fmt.Errorf("transfer host: %w", err)
	}
	if err := s.store.Write(ctx, memberHostFlagPath(code, self.ID), false); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Msg("clear legacy host flag")
	}
	if err := s.store.Write(ctx, memberHostFlagPath(code, newHostID), true); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Msg("set legacy host flag")
	}

	s.switchToGuest()
	s.notify.Notify(core.EventSuccess, fmt.Sprintf("Ownership transferred to %s", newHostName))
	log.Info().Str("module", "app.session").Str("new_host", string(newHostID)).Msg("host transferred")
	return nil
}

// KickUser removes a member's entry. The kicked client discovers its absence
// on its next guest poll; there is no push notification.
func (s *Service) KickUser(ctx context.Context, id domain.UserID) error {
	s.mu.Lock()
	if s.role != core.RoleHost {
		s.mu.Unlock()
		return core.ErrNotHost
	}
	code := s.code
	s.mu.Unlock()

	if err := s.store.Delete(ctx, memberPath(code, id)); err != nil {
		s.notify.Notify(core.EventError, "Kick failed")
		return fmt.Errorf("kick user: %w", err)
	}
	s.notify.Notify(core.EventInfo, "User kicked")
	return nil
}

// InviteUser drops an invitation into the target's mailbox.
func (s *Service) InviteUser(ctx context.Context, target domain.UserID) error {
	s.mu.Lock()
	if s.role != core.RoleHost {
		s.mu.Unlock()
		return core.ErrNotHost
	}
	code, self := s.code, s.self
	s.mu.Unlock()

	inv := domain.Invite{HostName: self.Name, SessionID: string(code), TS: s.now().UnixMilli()}
	if err := s.store.Write(ctx, invitePath(target, code), inv); err != nil {
		s.notify.Notify(core.EventError, "Failed to send invite")
		return fmt.Errorf("invite user: %w", err)
	}
	s.notify.Notify(core.EventSuccess, "Invite sent")
	return nil
}
