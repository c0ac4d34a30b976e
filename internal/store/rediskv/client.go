// Package rediskv implements the hierarchical KV store contract on Redis for
// self-hosted deployments. Each path maps to one key holding JSON; reads of a
// parent path merge any child keys into the document, and overwrites or
// deletes purge children so a path never holds both a stale subtree and a
// fresh value.
package rediskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tandem:"

type Client struct {
	rdb *redis.Client
}

func New(addr string) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewWithClient wires an existing client; used by tests.
func NewWithClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func key(path string) string {
	return keyPrefix + strings.Trim(path, "/")
}

// Write replaces the entire value at path, removing any previously written
// child paths.
func (c *Client) Write(ctx context.Context, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := c.deleteChildren(ctx, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := c.rdb.Set(ctx, key(path), body, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read fetches path into dst, merging child keys into the document the same
// way a hierarchical store would.
func (c *Client) Read(ctx context.Context, path string, dst any) (bool, error) {
	doc := map[string]any{}
	haveOwn := false

	raw, err := c.rdb.Get(ctx, key(path)).Result()
	switch {
	case err == nil:
		haveOwn = true
	case errors.Is(err, redis.Nil):
	default:
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	if haveOwn {
		var own any
		if err := json.Unmarshal([]byte(raw), &own); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		if m, ok := own.(map[string]any); ok {
			doc = m
		} else {
			// Scalar value at this exact path; children, if any, win below.
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				return false, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	haveChildren, err := c.mergeChildren(ctx, path, doc)
	if err != nil {
		return false, err
	}
	if !haveOwn && !haveChildren {
		return false, nil
	}
	if len(doc) == 0 && haveOwn {
		// Scalar already decoded into dst above.
		return true, nil
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", path, err)
	}
	if err := json.Unmarshal(merged, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Delete removes path and everything beneath it. Idempotent.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.deleteChildren(ctx, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if err := c.rdb.Del(ctx, key(path)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (c *Client) mergeChildren(ctx context.Context, path string, doc map[string]any) (bool, error) {
	prefix := key(path) + "/"
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	found := false
	for iter.Next(ctx) {
		childKey := iter.Val()
		raw, err := c.rdb.Get(ctx, childKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		var val any
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			return false, fmt.Errorf("decode %s: %w", childKey, err)
		}
		insertAt(doc, strings.Split(strings.TrimPrefix(childKey, prefix), "/"), val)
		found = true
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("scan %s: %w", path, err)
	}
	return found, nil
}

func (c *Client) deleteChildren(ctx context.Context, path string) error {
	iter := c.rdb.Scan(ctx, 0, key(path)+"/*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// insertAt places val into doc at the nested position named by segments,
// creating intermediate objects as needed. A child key always wins over a
// scalar previously occupying its slot.
func insertAt(doc map[string]any, segments []string, val any) {
	for i, seg := range segments {
		if i == len(segments)-1 {
			if m, ok := val.(map[string]any); ok {
				if existing, ok := doc[seg].(map[string]any); ok {
					for k, v := range m {
						existing[k] = v
					}
					return
				}
			}
			doc[seg] = val
			return
		}
		next, ok := doc[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[seg] = next
		}
		doc = next
	}
}
