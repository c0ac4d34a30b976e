package domain

import (
	"math/rand"
	"strings"
)

// CodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	SessionCodeLen = 6
	// MaxMembers is a soft cap: it is checked read-then-write at join time,
	// so concurrent joins can exceed it transiently.
	MaxMembers = 5
)

type SessionCode string

// GenerateCode returns a random 6-character code. Collisions are not checked;
// with a 32-character alphabet they are probabilistically negligible.
func GenerateCode() SessionCode {
	var b strings.Builder
	b.Grow(SessionCodeLen)
	for i := 0; i < SessionCodeLen; i++ {
		b.WriteByte(CodeAlphabet[rand.Intn(len(CodeAlphabet))])
	}
	return SessionCode(b.String())
}

// NormalizeCode upcases and trims user-entered codes before lookup.
func NormalizeCode(raw string) SessionCode {
	return SessionCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// MemberRecord is one entry under sessions/{code}/members/{userId}.
// IsHost is legacy bookkeeping kept for wire compatibility; the root host
// field of the session is authoritative.
type MemberRecord struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Joined int64  `json:"joined"`
}

// Session is the shared record at sessions/{code}. All invariants are
// maintained by client discipline only; the store does no validation.
type Session struct {
	Host     UserID                  `json:"host"`
	HostName string                  `json:"hostName"`
	Created  int64                   `json:"created"`
	Members  map[UserID]MemberRecord `json:"members"`
	Playback *PlaybackState          `json:"playback,omitempty"`
}

func (s *Session) MemberCount() int { return len(s.Members) }
