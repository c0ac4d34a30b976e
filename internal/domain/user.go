// Package domain contains entities without logic beyond their own invariants.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxNameLen caps display names when no limit is configured.
const DefaultMaxNameLen = 15

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
	ErrNameBlocked = errors.New("display name contains a blocked word")
)

// blockedWords are rejected as case-insensitive substrings of a display name.
var blockedWords = []string{
	"admin", "mod", "root",
	"fuck", "shit", "bitch", "whore", "slut",
	"kys", "kill",
}

type UserID string

// User is the local participant identity. ID is generated once and persisted;
// Name is user-editable and validated on every change.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// NewUser mints a fresh identity with an empty display name.
func NewUser() User {
	return User{ID: UserID(uuid.NewString())}
}

// ValidateName checks a display name against the length cap and blocklist.
// maxLen <= 0 falls back to DefaultMaxNameLen.
func ValidateName(name string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLen
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > maxLen {
		return ErrNameTooLong
	}
	lower := strings.ToLower(name)
	for _, w := range blockedWords {
		if strings.Contains(lower, w) {
			return ErrNameBlocked
		}
	}
	return nil
}

func (u *User) SetName(name string, maxLen int) error {
	if err := ValidateName(name, maxLen); err != nil {
		return err
	}
	u.Name = strings.TrimSpace(name)
	return nil
}
