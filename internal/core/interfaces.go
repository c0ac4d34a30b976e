// Package core declares the interfaces the session service is written
// against. Adapters own their transport resources; core never closes them.
package core

import (
	"context"

	"github.com/dkorolev/tandem/internal/domain"
)

// Store is the remote hierarchical key-value store shared by all session
// participants. Write replaces the entire value at path (no merge). Read of
// an absent path returns found=false without error; only transport failures
// are errors. Delete is idempotent.
//
// The store offers no transactions or compare-and-swap: every invariant above
// this interface is maintained by client discipline alone.
type Store interface {
	Write(ctx context.Context, path string, v any) error
	Read(ctx context.Context, path string, dst any) (found bool, err error)
	Delete(ctx context.Context, path string) error
}

// QueuedTrack is one entry of the player's upcoming queue.
type QueuedTrack struct {
	URI        string `json:"uri"`
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
	ImageURL   string `json:"image_url,omitempty"`
}

// PlayerSnapshot is the player's reported state at the moment of the call.
// Pos is already extrapolated to "now" by the adapter when playing.
type PlayerSnapshot struct {
	URI     string
	Name    string
	Pos     int64
	Playing bool
	Queue   []QueuedTrack
}

// Player is the narrow read/control surface of the desktop music player.
// Control calls are fire-and-forget; callers swallow their errors so a
// flaky player never breaks a sync tick.
type Player interface {
	Snapshot() (PlayerSnapshot, error)
	PlayURI(ctx context.Context, uri string) error
	Seek(ctx context.Context, posMS int64) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
}

type EventKind string

const (
	EventJoin    EventKind = "join"
	EventLeave   EventKind = "leave"
	EventInfo    EventKind = "info"
	EventSuccess EventKind = "success"
	EventError   EventKind = "error"
)

// Notifier receives user-facing feedback (the toast/audio-cue surface).
type Notifier interface {
	Notify(kind EventKind, msg string)
}

type Role int

const (
	RoleNone Role = iota
	RoleHost
	RoleGuest
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	default:
		return "none"
	}
}

// MemberView is a read-only membership row for APIs and the reconciler.
type MemberView struct {
	ID     domain.UserID `json:"id"`
	Name   string        `json:"name"`
	IsHost bool          `json:"isHost"`
}

// SessionStatus is the aggregate state exposed on the control API.
type SessionStatus struct {
	UserID    domain.UserID     `json:"userId"`
	UserName  string            `json:"userName"`
	Role      string            `json:"role"`
	Code      string            `json:"code,omitempty"`
	Members   []MemberView      `json:"members"`
	NextTrack *domain.NextTrack `json:"nextTrack,omitempty"`
}

// InviteView is a pending invitation as surfaced to the user.
type InviteView struct {
	Code     domain.SessionCode `json:"code"`
	HostName string             `json:"hostName"`
	TS       int64              `json:"ts"`
}
