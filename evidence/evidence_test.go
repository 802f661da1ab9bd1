// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package evidence

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/identity"
	"github.com/votespace/votespace-go/kv"
	"github.com/votespace/votespace-go/models"
)

var (
	guest = identity.Identity{GuestID: "guest_1_abcdefghi"}
	authd = identity.Identity{UserID: "user-7"}
)

func newStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()

	jar, err := cookiejar.Open(filepath.Join(t.TempDir(), "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	t.Cleanup(func() { jar.Close() })

	persistent := kv.NewMemory()
	return New(persistent, kv.NewMemory(), jar, "fp123"), persistent
}

func TestRecordRoundTrip(t *testing.T) {
	s, _ := newStore(t)

	if rec := s.Record("r1", guest); rec != nil {
		t.Fatalf("Expected no record before save, got %+v", rec)
	}

	s.SaveRecord("r1", "Pizza", guest)

	rec := s.Record("r1", guest)
	if rec == nil {
		t.Fatal("Expected a record after save")
	}
	if rec.Option != "Pizza" || rec.RoomID != "r1" || rec.GuestID != guest.GuestID {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.UserID != "" {
		t.Errorf("Guest record should not carry a user id, got %q", rec.UserID)
	}
}

func TestAtMostOneRecordPerRoomAndIdentity(t *testing.T) {
	s, _ := newStore(t)

	s.SaveRecord("r1", "Pizza", guest)
	s.SaveRecord("r1", "Tacos", guest)

	var count int
	for _, rec := range s.AllRecords() {
		if rec.RoomID == "r1" && rec.GuestID == guest.GuestID {
			count++
			if rec.Option != "Tacos" {
				t.Errorf("Expected last write to win, got %q", rec.Option)
			}
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one record, got %d", count)
	}
}

func TestRecordsAreIdentityScoped(t *testing.T) {
	s, _ := newStore(t)

	s.SaveRecord("r1", "Pizza", guest)

	if rec := s.Record("r1", authd); rec != nil {
		t.Errorf("Expected no record for a different identity, got %+v", rec)
	}
	other := identity.Identity{GuestID: "guest_2_zzzzzzzzz"}
	if rec := s.Record("r1", other); rec != nil {
		t.Errorf("Expected no record for a different guest, got %+v", rec)
	}
}

func TestExpiredCollectionReadsEmpty(t *testing.T) {
	s, persistent := newStore(t)

	stale := collectionBlob{
		Votes: []models.VoteRecord{{
			RoomID:    "r1",
			Option:    "Pizza",
			Timestamp: time.Now().Add(-8 * 24 * time.Hour).UnixMilli(),
			GuestID:   guest.GuestID,
		}},
		LastUpdated: time.Now().Add(-8 * 24 * time.Hour).UnixMilli(),
	}
	raw, _ := json.Marshal(stale)
	persistent.Set(CollectionKey, string(raw))

	if rec := s.Record("r1", guest); rec != nil {
		t.Errorf("Expected expired collection to read as empty, got %+v", rec)
	}

	// A subsequent write re-initializes the stamp.
	s.SaveRecord("r2", "Sushi", guest)

	v, ok, _ := persistent.Get(CollectionKey)
	if !ok {
		t.Fatal("Expected collection to exist after write")
	}
	var blob collectionBlob
	if err := json.Unmarshal([]byte(v), &blob); err != nil {
		t.Fatalf("Collection blob corrupt: %v", err)
	}
	if age := time.Now().UnixMilli() - blob.LastUpdated; age > int64(time.Minute.Milliseconds()) {
		t.Errorf("Expected lastUpdated near now, age %dms", age)
	}
	if len(blob.Votes) != 1 {
		t.Errorf("Expected only the new record, got %d", len(blob.Votes))
	}
}

func TestCorruptCollectionReadsEmpty(t *testing.T) {
	s, persistent := newStore(t)
	persistent.Set(CollectionKey, "{not json")

	if rec := s.Record("r1", guest); rec != nil {
		t.Errorf("Expected corrupt collection to read as empty, got %+v", rec)
	}
}

func TestWriteVoteTouchesEverySurface(t *testing.T) {
	s, _ := newStore(t)

	s.WriteVote("r1", "Pizza", guest)

	if s.Record("r1", guest) == nil {
		t.Error("canonical record missing")
	}
	if !s.SimpleFlag("r1", guest) {
		t.Error("simple flag missing")
	}
	if !s.SessionFlag("r1") {
		t.Error("session flag missing")
	}
	if !s.CookieFlag("r1") {
		t.Error("cookie flag missing")
	}
	if !s.FingerprintFlag("r1") {
		t.Error("fingerprint flag missing")
	}
	if _, ok := s.VoteTimestamp("r1"); !ok {
		t.Error("timestamp entry missing")
	}
}

func TestClearVoteWipesEverySurface(t *testing.T) {
	s, _ := newStore(t)

	s.WriteVote("r1", "Pizza", guest)
	s.ClearVote("r1", guest)

	if s.HasVotedAnywhere("r1", guest) {
		t.Error("Expected no evidence after clear")
	}
	if _, ok := s.VoteTimestamp("r1"); ok {
		t.Error("Expected timestamp to be cleared")
	}
}

func TestHasVotedAnywhereORsSurfaces(t *testing.T) {
	cases := []struct {
		name string
		seed func(s *Store)
	}{
		{"collection", func(s *Store) { s.SaveRecord("r1", "Pizza", guest) }},
		{"simple flag", func(s *Store) { s.MarkSimpleFlag("r1", guest) }},
		{"session flag", func(s *Store) {
			m := map[string]bool{"r1": true}
			raw, _ := json.Marshal(m)
			s.session.Set(sessionKey, string(raw))
		}},
		{"cookie flag", func(s *Store) { s.jar.Set("voted_r1", "true", time.Hour) }},
		{"fingerprint flag", func(s *Store) { s.persistent.Set(s.fingerprintKey("r1"), "true") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newStore(t)
			if s.HasVotedAnywhere("r1", guest) {
				t.Fatal("Expected clean store")
			}
			tc.seed(s)
			if !s.HasVotedAnywhere("r1", guest) {
				t.Error("Expected aggregate to report voted")
			}
		})
	}
}

func TestSimpleFlagIsPerIdentity(t *testing.T) {
	s, _ := newStore(t)

	s.MarkSimpleFlag("r1", guest)
	if s.SimpleFlag("r1", authd) {
		t.Error("Simple flag leaked across identities")
	}
	if s.SimpleFlag("r2", guest) {
		t.Error("Simple flag leaked across rooms")
	}
}

func TestSyncWithServerVote(t *testing.T) {
	s, _ := newStore(t)

	s.SaveRecord("r2", "A", guest)
	s.SyncWithServer("r2", &models.UserVote{ID: "v1", Option: "B", CreatedAt: time.Now()}, guest)

	rec := s.Record("r2", guest)
	if rec == nil || rec.Option != "B" {
		t.Errorf("Expected server vote to overwrite record, got %+v", rec)
	}
	if !s.SimpleFlag("r2", guest) {
		t.Error("Expected simple flag set after sync-down")
	}
}

func TestSyncWithServerNull(t *testing.T) {
	s, _ := newStore(t)

	s.WriteVote("r1", "Pizza", guest)
	s.SyncWithServer("r1", nil, guest)

	if s.Record("r1", guest) != nil {
		t.Error("Expected record removed when server reports no vote")
	}
	if s.SimpleFlag("r1", guest) {
		t.Error("Expected simple flag cleared when server reports no vote")
	}
}

// failingStore errors on everything, standing in for disabled storage.
type failingStore struct{}

var errStorage = errors.New("storage disabled")

func (failingStore) Get(string) (string, bool, error) { return "", false, errStorage }
func (failingStore) Set(string, string) error         { return errStorage }
func (failingStore) Delete(string) error              { return errStorage }
func (failingStore) Close() error                     { return nil }

func TestPredicatesSurviveFailingSurface(t *testing.T) {
	jar, err := cookiejar.Open(filepath.Join(t.TempDir(), "cookies.db"))
	if err != nil {
		t.Fatalf("Failed to open cookie jar: %v", err)
	}
	defer jar.Close()

	s := New(failingStore{}, failingStore{}, jar, "fp123")

	if s.HasVotedAnywhere("r1", guest) {
		t.Error("Expected failing surfaces to read as not voted")
	}
	if s.SimpleFlag("r1", guest) {
		t.Error("Expected failing simple flag to read as false")
	}

	// Writes must not panic or abort remaining surfaces.
	s.WriteVote("r1", "Pizza", guest)
	if !s.CookieFlag("r1") {
		t.Error("Expected the healthy cookie surface to still be written")
	}
	s.ClearVote("r1", guest)
	if s.CookieFlag("r1") {
		t.Error("Expected the healthy cookie surface to still be cleared")
	}
}
