// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/votespace/votespace-go/api"
	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/evidence"
	"github.com/votespace/votespace-go/identity"
	"github.com/votespace/votespace-go/kv"
	"github.com/votespace/votespace-go/voting"
)

// TestFingerprint is the fixed device fingerprint used by store fixtures.
const TestFingerprint = "t3stfp"

// OpenStores opens a pebble store and a cookie jar under a temp directory,
// both closed automatically when the test finishes.
func OpenStores(t *testing.T) (*kv.Pebble, *kv.Memory, *cookiejar.Jar) {
	t.Helper()

	dir := t.TempDir()

	persistent, err := kv.OpenPebble(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("Failed to open pebble store: %v", err)
	}
	t.Cleanup(func() { persistent.Close() })

	jar, err := cookiejar.Open(filepath.Join(dir, "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	t.Cleanup(func() { jar.Close() })

	return persistent, kv.NewMemory(), jar
}

// NewEvidenceStore builds an evidence store over fresh temp-backed surfaces.
func NewEvidenceStore(t *testing.T) (*evidence.Store, *cookiejar.Jar) {
	t.Helper()
	persistent, session, jar := OpenStores(t)
	return evidence.New(persistent, session, jar, TestFingerprint), jar
}

// NewTracker wires a tracker against the given fake server with fresh local
// state.
func NewTracker(t *testing.T, srv *VoteServer) (*voting.Tracker, *evidence.Store) {
	t.Helper()

	store, jar := NewEvidenceStore(t)
	client := api.New(api.Config{BaseURL: srv.URL()})
	resolver := identity.NewResolver(jar)
	return voting.NewTracker(client, store, resolver), store
}
