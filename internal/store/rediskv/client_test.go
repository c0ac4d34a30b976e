package rediskv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewWithClient(rdb)
}

type session struct {
	Host    string            `json:"host"`
	Members map[string]member `json:"members,omitempty"`
}

type member struct {
	Name string `json:"name"`
}

func TestWriteThenRead(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234", session{Host: "u-1"}))

	var got session
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-1", got.Host)
}

func TestReadAbsent(t *testing.T) {
	c := newTestClient(t)
	var got session
	found, err := c.Read(context.Background(), "sessions/NOPE42", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadMergesChildPaths(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234", session{Host: "u-1"}))
	require.NoError(t, c.Write(ctx, "sessions/ABC234/members/u-2", member{Name: "Gwen"}))

	var got session
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-1", got.Host)
	require.Contains(t, got.Members, "u-2")
	assert.Equal(t, "Gwen", got.Members["u-2"].Name)
}

func TestChildWriteOverridesParentField(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234", session{Host: "u-1"}))
	require.NoError(t, c.Write(ctx, "sessions/ABC234/host", "u-2"))

	var got session
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-2", got.Host)
}

func TestOverwritePurgesChildren(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234/members/u-2", member{Name: "Gwen"}))
	require.NoError(t, c.Write(ctx, "sessions/ABC234", session{Host: "u-1"}))

	var got session
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, got.Members, "stale subtree must not leak into the new document")
}

func TestDeleteRemovesSubtree(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234", session{Host: "u-1"}))
	require.NoError(t, c.Write(ctx, "sessions/ABC234/members/u-2", member{Name: "Gwen"}))
	require.NoError(t, c.Delete(ctx, "sessions/ABC234"))

	var got session
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	assert.False(t, found)

	var m member
	found, err = c.Read(ctx, "sessions/ABC234/members/u-2", &m)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAbsentIsIdempotent(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Delete(context.Background(), "sessions/NOPE42"))
}

func TestScalarRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "sessions/ABC234/host", "u-9"))

	var host string
	found, err := c.Read(ctx, "sessions/ABC234/host", &host)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-9", host)
}
