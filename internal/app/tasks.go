package app

import "context"

// taskSet owns the repeating loops of one role. Stopping cancels the set's
// context; in-flight ticks are not interrupted but re-check the context
// before applying any result, so a canceled set can never mutate state.
type taskSet struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newTaskSet(parent context.Context) *taskSet {
	ctx, cancel := context.WithCancel(parent)
	return &taskSet{ctx: ctx, cancel: cancel}
}

func (t *taskSet) stop() {
	t.cancel()
}
