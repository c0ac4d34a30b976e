package app

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// memberViews flattens the session's member map into a stable, join-ordered
// list. The root host field is authoritative for the IsHost flag; the
// per-member legacy flag is ignored on read.
func memberViews(sess *domain.Session) []core.MemberView {
	type row struct {
		view   core.MemberView
		joined int64
	}
	rows := make([]row, 0, len(sess.Members))
	for id, rec := range sess.Members {
		rows = append(rows, row{
			view:   core.MemberView{ID: id, Name: rec.Name, IsHost: id == sess.Host},
			joined: rec.Joined,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].joined != rows[j].joined {
			return rows[i].joined < rows[j].joined
		}
		return rows[i].view.ID < rows[j].view.ID
	})
	out := make([]core.MemberView, len(rows))
	for i, r := range rows {
		out[i] = r.view
	}
	return out
}

// diffMembers computes who appeared and who vanished between two snapshots.
func diffMembers(prev, curr []core.MemberView) (joined, left []core.MemberView) {
	prevIDs := make(map[domain.UserID]struct{}, len(prev))
	for _, m := range prev {
		prevIDs[m.ID] = struct{}{}
	}
	currIDs := make(map[domain.UserID]struct{}, len(curr))
	for _, m := range curr {
		currIDs[m.ID] = struct{}{}
	}
	for _, m := range curr {
		if _, ok := prevIDs[m.ID]; !ok {
			joined = append(joined, m)
		}
	}
	for _, m := range prev {
		if _, ok := currIDs[m.ID]; !ok {
			left = append(left, m)
		}
	}
	return joined, left
}

// reconcileMembers replaces the tracked snapshot and emits join/leave events
// for everyone but self. The very first poll after connecting has no previous
// snapshot, so it populates silently. Runs identically on both roles.
func (s *Service) reconcileMembers(curr []core.MemberView) {
	s.mu.Lock()
	prev := s.prev
	s.prev = curr
	s.members = curr
	self := s.self.ID
	s.mu.Unlock()

	if len(prev) > 0 {
		joined, left := diffMembers(prev, curr)
		for _, m := range joined {
			if m.ID != self {
				s.notify.Notify(core.EventJoin, m.Name+" joined!")
			}
		}
		for _, m := range left {
			if m.ID != self {
				s.notify.Notify(core.EventLeave, m.Name+" left.")
			}
		}
	}
	s.rememberMembers(curr, self)
}

func (s *Service) rememberMembers(curr []core.MemberView, self domain.UserID) {
	if s.local == nil {
		return
	}
	seen := make([]domain.RecentUser, 0, len(curr))
	for _, m := range curr {
		if m.ID != self {
			seen = append(seen, domain.RecentUser{ID: m.ID, Name: m.Name})
		}
	}
	if err := s.local.RememberUsers(seen, s.now()); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Msg("update recent users")
	}
}
