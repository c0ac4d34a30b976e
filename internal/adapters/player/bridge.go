// Package player connects to the desktop music player over a local websocket
// bridge. The player pushes state messages which the adapter caches; control
// commands are JSON envelopes written back on the same connection.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/core"
)

var ErrNotConnected = errors.New("player not connected")

const (
	writeWait   = 5 * time.Second
	readWait    = 30 * time.Second
	redialDelay = 2 * time.Second
)

// stateMsg is what the bridge pushes whenever playback changes (and as a
// periodic heartbeat).
type stateMsg struct {
	Type    string             `json:"type"`
	URI     string             `json:"uri"`
	Name    string             `json:"name"`
	Pos     int64              `json:"pos"`
	Playing bool               `json:"playing"`
	Queue   []core.QueuedTrack `json:"queue"`
}

type command struct {
	Type string `json:"type"`
	URI  string `json:"uri,omitempty"`
	Pos  int64  `json:"pos,omitempty"`
}

type Bridge struct {
	url string

	mu      sync.RWMutex
	conn    *websocket.Conn
	state   stateMsg
	stateTS int64

	now func() time.Time
}

func New(url string) *Bridge {
	return &Bridge{url: url, now: time.Now}
}

// Run dials the bridge and keeps the connection alive until ctx is canceled,
// redialing after read failures. Owned by the adapter; callers never see the
// connection.
func (b *Bridge) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.player").Msg("dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialDelay):
			}
			continue
		}
		log.Info().Str("module", "adapters.player").Str("url", b.url).Msg("connected")
		b.setConn(conn)
		b.readLoop(ctx, conn)
		b.setConn(nil)
		_ = conn.Close()
	}
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			log.Error().Err(err).Str("module", "adapters.player").Msg("set read deadline")
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.player").Msg("read error")
			return
		}
		var msg stateMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error().Err(err).Str("module", "adapters.player").Msg("bad json")
			continue
		}
		if msg.Type != "state" {
			continue
		}
		b.mu.Lock()
		b.state = msg
		b.stateTS = b.now().UnixMilli()
		b.mu.Unlock()
	}
}

func (b *Bridge) setConn(conn *websocket.Conn) {
	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
}

// Snapshot returns the last reported state with the position extrapolated to
// now while playing.
func (b *Bridge) Snapshot() (core.PlayerSnapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.conn == nil {
		return core.PlayerSnapshot{}, ErrNotConnected
	}
	pos := b.state.Pos
	if b.state.Playing {
		pos += b.now().UnixMilli() - b.stateTS
	}
	queue := make([]core.QueuedTrack, len(b.state.Queue))
	copy(queue, b.state.Queue)
	return core.PlayerSnapshot{
		URI:     b.state.URI,
		Name:    b.state.Name,
		Pos:     pos,
		Playing: b.state.Playing,
		Queue:   queue,
	}, nil
}

func (b *Bridge) send(cmd command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return ErrNotConnected
	}
	if err := b.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return b.conn.WriteJSON(cmd)
}

func (b *Bridge) PlayURI(_ context.Context, uri string) error {
	return b.send(command{Type: "play_uri", URI: uri})
}

func (b *Bridge) Seek(_ context.Context, posMS int64) error {
	return b.send(command{Type: "seek", Pos: posMS})
}

func (b *Bridge) Play(_ context.Context) error {
	return b.send(command{Type: "play"})
}

func (b *Bridge) Pause(_ context.Context) error {
	return b.send(command{Type: "pause"})
}
