package rtdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRTDB mimics the store's REST surface: PUT replaces, GET returns the
// stored JSON or literal null, DELETE removes.
type fakeRTDB struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newFakeRTDB() *fakeRTDB {
	return &fakeRTDB{docs: map[string][]byte{}}
}

func (f *fakeRTDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.docs[r.URL.Path] = body
		w.Write(body)
	case http.MethodGet:
		doc, ok := f.docs[r.URL.Path]
		if !ok {
			w.Write([]byte("null"))
			return
		}
		w.Write(doc)
	case http.MethodDelete:
		delete(f.docs, r.URL.Path)
		w.Write([]byte("null"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestWriteThenRead(t *testing.T) {
	backend := newFakeRTDB()
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(srv.URL + "/") // trailing slash must not double up
	ctx := context.Background()

	type rec struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	require.NoError(t, c.Write(ctx, "sessions/ABC234", rec{Name: "x", N: 7}))

	backend.mu.Lock()
	_, ok := backend.docs["/sessions/ABC234.json"]
	backend.mu.Unlock()
	assert.True(t, ok, "path must be suffixed with .json")

	var got rec
	found, err := c.Read(ctx, "sessions/ABC234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec{Name: "x", N: 7}, got)
}

func TestReadAbsentPath(t *testing.T) {
	srv := httptest.NewServer(newFakeRTDB())
	defer srv.Close()

	var dst map[string]any
	found, err := New(srv.URL).Read(context.Background(), "nothing/here", &dst)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadEmptyBodyIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var dst map[string]any
	found, err := New(srv.URL).Read(context.Background(), "x", &dst)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDelete(t *testing.T) {
	backend := newFakeRTDB()
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "sessions/ABC234", map[string]string{"k": "v"}))
	require.NoError(t, c.Delete(ctx, "sessions/ABC234"))

	var dst map[string]string
	found, err := c.Read(ctx, "sessions/ABC234", &dst)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAbsentIsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Delete(context.Background(), "gone"))
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	assert.Error(t, c.Write(ctx, "x", json.RawMessage(`1`)))
	_, err := c.Read(ctx, "x", &struct{}{})
	assert.Error(t, err)
	assert.Error(t, c.Delete(ctx, "x"))
}
