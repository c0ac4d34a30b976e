// Package storage persists client-local state: the stable user identity, the
// chosen store endpoint and the recent-users cache. Everything lives in one
// SQLite file under the data directory.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dkorolev/tandem/internal/domain"
	_ "modernc.org/sqlite"
)

const (
	settingUserID   = "user_id"
	settingUserName = "user_name"
	settingStoreURL = "store_url"
)

type Local struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the local database in the given directory.
func Open(dataDir string) (*Local, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "tandem.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS recent_users (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			last_seen INTEGER NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Local{db: db}, nil
}

func (l *Local) Close() error { return l.db.Close() }

func (l *Local) setting(key string) (string, error) {
	var value string
	err := l.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (l *Local) setSetting(key, value string) error {
	_, err := l.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// Identity returns the persisted local user, minting and storing a fresh id
// on first use. The display name may be empty until the user sets one.
func (l *Local) Identity() (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.setting(settingUserID)
	if err != nil {
		return domain.User{}, err
	}
	if id == "" {
		u := domain.NewUser()
		if err := l.setSetting(settingUserID, string(u.ID)); err != nil {
			return domain.User{}, err
		}
		id = string(u.ID)
	}
	name, err := l.setting(settingUserName)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: domain.UserID(id), Name: name}, nil
}

func (l *Local) SetUserName(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setSetting(settingUserName, name)
}

func (l *Local) StoreURL() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setting(settingStoreURL)
}

func (l *Local) SetStoreURL(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setSetting(settingStoreURL, url)
}

// RecentUsers returns the cache most-recent-first, bounded by
// domain.MaxRecentUsers.
func (l *Local) RecentUsers() ([]domain.RecentUser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.Query(`
		SELECT id, name, last_seen FROM recent_users
		ORDER BY last_seen DESC LIMIT ?
	`, domain.MaxRecentUsers)
	if err != nil {
		return nil, fmt.Errorf("read recent users: %w", err)
	}
	defer rows.Close()

	var out []domain.RecentUser
	for rows.Next() {
		var r domain.RecentUser
		if err := rows.Scan(&r.ID, &r.Name, &r.LastSeen); err != nil {
			return nil, fmt.Errorf("scan recent user: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RememberUsers upserts the given users into the cache and prunes anything
// beyond the cap, oldest first.
func (l *Local) RememberUsers(users []domain.RecentUser, now time.Time) error {
	if len(users) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, u := range users {
		if _, err := l.db.Exec(`
			INSERT INTO recent_users (id, name, last_seen) VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, last_seen = excluded.last_seen
		`, string(u.ID), u.Name, now.UnixMilli()); err != nil {
			return fmt.Errorf("remember user %s: %w", u.ID, err)
		}
	}
	if _, err := l.db.Exec(`
		DELETE FROM recent_users WHERE id NOT IN (
			SELECT id FROM recent_users ORDER BY last_seen DESC LIMIT ?
		)
	`, domain.MaxRecentUsers); err != nil {
		return fmt.Errorf("prune recent users: %w", err)
	}
	return nil
}
