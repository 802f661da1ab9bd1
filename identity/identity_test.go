// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/models"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	jar, err := cookiejar.Open(filepath.Join(t.TempDir(), "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	t.Cleanup(func() { jar.Close() })
	return NewResolver(jar)
}

func TestResolveAuthenticatedUser(t *testing.T) {
	r := newResolver(t)

	id := r.Resolve(&models.User{ID: "user-42"})
	if id.UserID != "user-42" {
		t.Errorf("Expected user id user-42, got %q", id.UserID)
	}
	if id.GuestID != "" {
		t.Errorf("Expected no guest id for authenticated user, got %q", id.GuestID)
	}
	if id.IsGuest() {
		t.Error("Expected authenticated identity")
	}
	if id.Key() != "user-42" {
		t.Errorf("Expected key user-42, got %q", id.Key())
	}
}

func TestResolveGuestIsIdempotent(t *testing.T) {
	r := newResolver(t)

	first := r.Resolve(nil)
	second := r.Resolve(nil)

	if first.GuestID == "" {
		t.Fatal("Expected a guest id")
	}
	if first.GuestID != second.GuestID {
		t.Errorf("Guest id regenerated: %q then %q", first.GuestID, second.GuestID)
	}
	if !first.IsGuest() {
		t.Error("Expected guest identity")
	}
}

func TestResolveGuestSurvivesNewResolver(t *testing.T) {
	jar, err := cookiejar.Open(filepath.Join(t.TempDir(), "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	defer jar.Close()

	first := NewResolver(jar).Resolve(nil)
	second := NewResolver(jar).Resolve(nil)
	if first.GuestID != second.GuestID {
		t.Errorf("Guest id not persisted across resolvers: %q then %q", first.GuestID, second.GuestID)
	}
}

func TestGuestIDFormat(t *testing.T) {
	now := time.Now()
	gid := NewGuestID(now)

	parts := strings.SplitN(gid, "_", 3)
	if len(parts) != 3 || parts[0] != "guest" {
		t.Fatalf("Unexpected guest id shape: %q", gid)
	}
	if len(parts[2]) != 9 {
		t.Errorf("Expected 9-char suffix, got %q", parts[2])
	}
	for _, c := range parts[2] {
		if !strings.ContainsRune(base36Chars, c) {
			t.Errorf("Suffix contains non-base36 char %q", c)
		}
	}
}

func TestGuestIDsDiffer(t *testing.T) {
	a := NewGuestID(time.Now())
	b := NewGuestID(time.Now())
	if a == b {
		t.Errorf("Two generated guest ids collided: %q", a)
	}
}
