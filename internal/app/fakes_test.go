package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkorolev/tandem/internal/config"
	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

var errStoreDown = errors.New("store down")

// fakeStore is a flat in-memory path store that records every mutation.
// Deleting a path also drops anything beneath it, mirroring the hierarchy.
type fakeStore struct {
	mu         sync.Mutex
	docs       map[string]json.RawMessage
	failWrites bool
	failReads  bool
	writes     []string
	deletes    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]json.RawMessage{}}
}

func (f *fakeStore) Write(_ context.Context, path string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.docs[path] = raw
	f.writes = append(f.writes, path)
	return nil
}

func (f *fakeStore) Read(_ context.Context, path string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return false, errStoreDown
	}
	raw, ok := f.docs[path]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, path)
	for k := range f.docs {
		if strings.HasPrefix(k, path+"/") {
			delete(f.docs, k)
		}
	}
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeStore) seed(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	f.mu.Lock()
	f.docs[path] = raw
	f.mu.Unlock()
}

func (f *fakeStore) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[path]
	return ok
}

func (f *fakeStore) deleted(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deletes {
		if d == path {
			return true
		}
	}
	return false
}

func (f *fakeStore) wrote(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.writes {
		if w == path {
			return true
		}
	}
	return false
}

type fakePlayer struct {
	mu      sync.Mutex
	snap    core.PlayerSnapshot
	snapErr error
	played  []string
	seeks   []int64
	plays   int
	pauses  int
}

func (p *fakePlayer) Snapshot() (core.PlayerSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, p.snapErr
}

func (p *fakePlayer) PlayURI(_ context.Context, uri string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, uri)
	return nil
}

func (p *fakePlayer) Seek(_ context.Context, posMS int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, posMS)
	return nil
}

func (p *fakePlayer) Play(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	return nil
}

func (p *fakePlayer) Pause(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return nil
}

type recordedEvent struct {
	kind core.EventKind
	msg  string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) Notify(kind core.EventKind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{kind: kind, msg: msg})
}

func (n *fakeNotifier) all() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedEvent, len(n.events))
	copy(out, n.events)
	return out
}

func (n *fakeNotifier) hasKind(kind core.EventKind) bool {
	for _, e := range n.all() {
		if e.kind == kind {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	return &config.Config{
		// Long intervals keep background tickers inert during tests; ticks
		// are driven directly.
		PublishInterval:    time.Hour,
		HostPollInterval:   time.Hour,
		GuestPollInterval:  time.Hour,
		InvitePollInterval: time.Hour,
		DriftTolerance:     3 * time.Second,
		InviteTTL:          60 * time.Second,
		MaxMembers:         5,
		MaxNameLength:      15,
	}
}

const selfID = domain.UserID("u-self")

func newTestService(store *fakeStore, pl *fakePlayer, n *fakeNotifier) *Service {
	if pl == nil {
		pl = &fakePlayer{}
	}
	svc := New(testConfig(), domain.User{ID: selfID, Name: "Selfy"}, Deps{
		Store:    store,
		Player:   pl,
		Notifier: n,
	})
	base := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time { return base }
	return svc
}

func sessionDoc(host domain.UserID, members ...domain.UserID) domain.Session {
	m := map[domain.UserID]domain.MemberRecord{}
	for i, id := range members {
		m[id] = domain.MemberRecord{Name: string(id), Joined: int64(i + 1)}
	}
	return domain.Session{Host: host, HostName: string(host), Created: 1, Members: m}
}
