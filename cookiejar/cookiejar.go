// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cookiejar

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SameSiteLax is recorded on every vote-tracking cookie, matching the policy
// the hosted UI uses.
const SameSiteLax = "Lax"

// Jar is a durable cookie store with per-entry expiry. It stands in for the
// browser cookie surface: entries are name/value pairs that disappear once
// their expiry passes.
type Jar struct {
	db *sql.DB
}

// Open opens (or creates) the jar database at the given path and ensures the
// schema exists.
func Open(path string) (*Jar, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Jar{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cookie (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			same_site TEXT NOT NULL DEFAULT 'Lax',
			expires_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cookie_expires_at ON cookie(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create cookie schema: %w", err)
	}
	return nil
}

// Get returns the value for name. Expired entries are treated as absent.
func (j *Jar) Get(name string) (string, bool) {
	var value string
	err := j.db.QueryRow(`
		SELECT value FROM cookie WHERE name = ? AND expires_at > ?
	`, name, time.Now().UnixMilli()).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		slog.Warn("cookie read failed", "name", name, "error", err)
		return "", false
	}
	return value, true
}

// Set writes a cookie with the given lifetime, replacing any prior entry.
func (j *Jar) Set(name, value string, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixMilli()
	_, err := j.db.Exec(`
		INSERT INTO cookie (name, value, same_site, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			value = excluded.value,
			same_site = excluded.same_site,
			expires_at = excluded.expires_at
	`, name, value, SameSiteLax, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set cookie %s: %w", name, err)
	}
	return nil
}

// Delete removes a cookie by name. Deleting an absent cookie is not an error.
func (j *Jar) Delete(name string) error {
	_, err := j.db.Exec(`DELETE FROM cookie WHERE name = ?`, name)
	return err
}

// PurgeExpired drops entries whose expiry has passed. Reads already ignore
// them; this just reclaims space.
func (j *Jar) PurgeExpired() {
	res, err := j.db.Exec(`DELETE FROM cookie WHERE expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		slog.Warn("cookie purge failed", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("purged expired cookies", "count", n)
	}
}

func (j *Jar) Close() error {
	return j.db.Close()
}
