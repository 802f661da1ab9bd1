// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cookiejar

import (
	"path/filepath"
	"testing"
	"time"
)

func openJar(t *testing.T) *Jar {
	t.Helper()
	jar, err := Open(filepath.Join(t.TempDir(), "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	t.Cleanup(func() { jar.Close() })
	return jar
}

func TestSetGet(t *testing.T) {
	jar := openJar(t)

	if err := jar.Set("anonymousId", "guest_1_abc", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := jar.Get("anonymousId")
	if !ok || v != "guest_1_abc" {
		t.Errorf("Expected (guest_1_abc, true), got (%q, %v)", v, ok)
	}
}

func TestGetMissing(t *testing.T) {
	jar := openJar(t)
	if _, ok := jar.Get("absent"); ok {
		t.Error("Expected absent cookie to read as not found")
	}
}

func TestExpiredCookieIsInvisible(t *testing.T) {
	jar := openJar(t)

	if err := jar.Set("voted_r1", "true", -time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := jar.Get("voted_r1"); ok {
		t.Error("Expected expired cookie to read as not found")
	}
}

func TestOverwriteExtendsExpiry(t *testing.T) {
	jar := openJar(t)

	jar.Set("voted_r1", "true", -time.Minute)
	jar.Set("voted_r1", "true", time.Hour)

	if _, ok := jar.Get("voted_r1"); !ok {
		t.Error("Expected rewritten cookie to be visible again")
	}
}

func TestDelete(t *testing.T) {
	jar := openJar(t)

	jar.Set("voted_r1", "true", time.Hour)
	if err := jar.Delete("voted_r1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := jar.Get("voted_r1"); ok {
		t.Error("Expected deleted cookie to be gone")
	}
	if err := jar.Delete("voted_r1"); err != nil {
		t.Errorf("Deleting absent cookie failed: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	jar := openJar(t)

	jar.Set("stale", "true", -time.Minute)
	jar.Set("fresh", "true", time.Hour)
	jar.PurgeExpired()

	if _, ok := jar.Get("fresh"); !ok {
		t.Error("Expected fresh cookie to survive purge")
	}
	if _, ok := jar.Get("stale"); ok {
		t.Error("Expected stale cookie to be purged")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")

	jar, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	jar.Set("anonymousId", "guest_2_xyz", time.Hour)
	jar.Close()

	jar2, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen cookie jar: %v", err)
	}
	defer jar2.Close()

	v, ok := jar2.Get("anonymousId")
	if !ok || v != "guest_2_xyz" {
		t.Errorf("Expected persisted cookie, got (%q, %v)", v, ok)
	}
}
