// Package app drives the sync session: one explicit service value owns the
// local identity, the current role, the membership snapshot and the repeating
// loops of whichever role is active.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/config"
	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
	"github.com/dkorolev/tandem/internal/storage"
)

// Deps are the collaborators the service is wired with. Local may be nil,
// which disables persistence of the recent-users cache.
type Deps struct {
	Store    core.Store
	Player   core.Player
	Notifier core.Notifier
	Local    *storage.Local
}

type Service struct {
	cfg    *config.Config
	store  core.Store
	player core.Player
	notify core.Notifier
	local  *storage.Local

	mu        sync.Mutex
	root      context.Context
	self      domain.User
	role      core.Role
	code      domain.SessionCode
	members   []core.MemberView
	prev      []core.MemberView
	nextTrack *domain.NextTrack
	pending   map[domain.SessionCode]domain.Invite
	roleTasks *taskSet

	now func() time.Time
}

func New(cfg *config.Config, self domain.User, d Deps) *Service {
	return &Service{
		cfg:     cfg,
		store:   d.Store,
		player:  d.Player,
		notify:  d.Notifier,
		local:   d.Local,
		self:    self,
		pending: make(map[domain.SessionCode]domain.Invite),
		now:     time.Now,
	}
}

// Start binds the service to its root context and starts the invite poller.
// Role loops are derived from the same root when a session begins.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.root = ctx
	s.mu.Unlock()
	go s.invitePollLoop(ctx)
	log.Info().Str("module", "app.session").Str("user", string(s.self.ID)).Msg("session service started")
}

func (s *Service) rootCtx() context.Context {
	if s.root != nil {
		return s.root
	}
	return context.Background()
}

func (s *Service) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role != core.RoleNone
}

func (s *Service) selfID() domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.self.ID
}

// Status reports the aggregate session state for the control surface.
func (s *Service) Status() core.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]core.MemberView, len(s.members))
	copy(members, s.members)
	return core.SessionStatus{
		UserID:    s.self.ID,
		UserName:  s.self.Name,
		Role:      s.role.String(),
		Code:      string(s.code),
		Members:   members,
		NextTrack: s.nextTrack,
	}
}

// SetName validates and persists the display name. Validation happens before
// any state is touched, so a rejected name leaves nothing behind.
func (s *Service) SetName(name string) error {
	s.mu.Lock()
	err := s.self.SetName(name, s.cfg.MaxNameLength)
	updated := s.self.Name
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.local != nil {
		if err := s.local.SetUserName(updated); err != nil {
			log.Warn().Err(err).Str("module", "app.session").Msg("persist display name")
		}
	}
	return nil
}

// SetStoreURL persists a new store endpoint. It takes effect on restart; the
// active session, if any, keeps its current backend.
func (s *Service) SetStoreURL(url string) error {
	if s.local == nil {
		return nil
	}
	return s.local.SetStoreURL(url)
}

// RecentUsers returns previously seen members for invite pre-population.
func (s *Service) RecentUsers() ([]domain.RecentUser, error) {
	if s.local == nil {
		return nil, nil
	}
	return s.local.RecentUsers()
}

// switchToHost stops whatever role loops are running, then starts the host
// pair (publish + poll). Stop-before-start is the hard invariant of every
// role transition; stale ticks see their context canceled and discard.
func (s *Service) switchToHost() {
	s.mu.Lock()
	s.stopRoleLocked()
	s.role = core.RoleHost
	ts := newTaskSet(s.rootCtx())
	s.roleTasks = ts
	s.mu.Unlock()

	go s.publishLoop(ts.ctx)
	go s.hostPollLoop(ts.ctx)
	log.Info().Str("module", "app.session").Msg("switched to host loops")
}

func (s *Service) switchToGuest() {
	s.mu.Lock()
	s.stopRoleLocked()
	s.role = core.RoleGuest
	ts := newTaskSet(s.rootCtx())
	s.roleTasks = ts
	s.mu.Unlock()

	go s.guestPollLoop(ts.ctx)
	log.Info().Str("module", "app.session").Msg("switched to guest loop")
}

// resetToIdle cancels the role loops and clears all session-scoped state.
func (s *Service) resetToIdle() {
	s.mu.Lock()
	s.stopRoleLocked()
	s.role = core.RoleNone
	s.code = ""
	s.members = nil
	s.prev = nil
	s.nextTrack = nil
	s.mu.Unlock()
}

func (s *Service) stopRoleLocked() {
	if s.roleTasks != nil {
		s.roleTasks.stop()
		s.roleTasks = nil
	}
}
