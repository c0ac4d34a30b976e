// Package feed is the user-feedback sink: every event is logged and kept in
// a bounded in-memory ring the control API can replay.
package feed

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
)

const maxEvents = 50

type Event struct {
	Kind    core.EventKind `json:"kind"`
	Message string         `json:"message"`
	TS      int64          `json:"ts"`
}

type Feed struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func New() *Feed {
	return &Feed{now: time.Now}
}

// Notify implements core.Notifier.
func (f *Feed) Notify(kind core.EventKind, msg string) {
	switch kind {
	case core.EventError:
		log.Warn().Str("module", "feed").Str("kind", string(kind)).Msg(msg)
	default:
		log.Info().Str("module", "feed").Str("kind", string(kind)).Msg(msg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, Event{Kind: kind, Message: msg, TS: f.now().UnixMilli()})
	if len(f.events) > maxEvents {
		f.events = f.events[len(f.events)-maxEvents:]
	}
}

// Recent returns the retained events, oldest first.
func (f *Feed) Recent() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}
