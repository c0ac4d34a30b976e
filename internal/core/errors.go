package core

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session full")
	ErrAlreadyInSession = errors.New("already in a session")
	ErrNotInSession     = errors.New("not in a session")
	ErrNotHost          = errors.New("not the session host")
	ErrInviteNotFound   = errors.New("invite not found")
)
