// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kv

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Pebble is a persistent Store backed by a Pebble database. It is the
// durable local surface: entries survive restarts and carry no expiry of
// their own.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a Pebble database at the given path.
func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (s *Pebble) Get(key string) (string, bool, error) {
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	out := string(v)
	if err := closer.Close(); err != nil {
		return "", false, err
	}
	return out, true, nil
}

func (s *Pebble) Set(key, value string) error {
	return s.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (s *Pebble) Delete(key string) error {
	return s.db.Delete([]byte(key), pebble.Sync)
}

func (s *Pebble) Close() error {
	return s.db.Close()
}
