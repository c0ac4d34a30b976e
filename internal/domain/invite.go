package domain

import "time"

// DefaultInviteTTL is how long a mailbox entry stays valid after being sent.
const DefaultInviteTTL = 60 * time.Second

// Invite is a mailbox entry at invites/{targetUserId}/{sessionCode}.
type Invite struct {
	HostName  string `json:"hostName"`
	SessionID string `json:"sessionId"`
	TS        int64  `json:"ts"`
}

// Expired reports whether the invite is older than ttl at the given time.
// Expired invites are never surfaced and are opportunistically deleted by
// whichever poller observes them. ttl <= 0 falls back to DefaultInviteTTL.
func (i Invite) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return now.UnixMilli()-i.TS >= ttl.Milliseconds()
}
