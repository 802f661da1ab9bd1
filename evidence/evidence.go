// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package evidence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/identity"
	"github.com/votespace/votespace-go/kv"
	"github.com/votespace/votespace-go/models"
)

const (
	// CollectionKey holds the canonical vote collection blob.
	CollectionKey = "votespace_user_votes"

	// CollectionExpiry is the whole-collection lifetime. A collection whose
	// lastUpdated stamp is older than this is discarded on read.
	CollectionExpiry = 7 * 24 * time.Hour

	// sessionKey holds the session-scoped {roomId: true} map.
	sessionKey = "sessionVotedRooms"

	// CookieFlagLifetime matches the 30-day voted_<roomId> cookie.
	CookieFlagLifetime = 30 * 24 * time.Hour
)

// collectionBlob is the serialized canonical collection: a flat record list
// stamped with a single lastUpdated used only for whole-collection expiry.
type collectionBlob struct {
	Votes       []models.VoteRecord `json:"votes"`
	LastUpdated int64               `json:"lastUpdated"` // epoch milliseconds
}

// Store merges the independent local evidence surfaces behind one interface.
// Every operation is best-effort: a failing surface is logged and skipped,
// and absent data reads as "not voted".
type Store struct {
	persistent  kv.Store
	session     kv.Store
	jar         *cookiejar.Jar
	fingerprint string
}

// New assembles a store over the given surfaces. fingerprint is the device
// fingerprint used to key the fingerprint surface; it is computed once at
// startup and injected here.
func New(persistent, session kv.Store, jar *cookiejar.Jar, fingerprint string) *Store {
	return &Store{
		persistent:  persistent,
		session:     session,
		jar:         jar,
		fingerprint: fingerprint,
	}
}

// Surface keys

func simpleFlagKey(roomID string, id identity.Identity) string {
	return fmt.Sprintf("voted_%s_%s", roomID, id.Key())
}

func cookieFlagName(roomID string) string {
	return "voted_" + roomID
}

func (s *Store) fingerprintKey(roomID string) string {
	return fmt.Sprintf("fp_%s_%s", s.fingerprint, roomID)
}

func timestampKey(roomID string) string {
	return "vote_time_" + roomID
}

// Canonical collection

func (s *Store) readCollection() collectionBlob {
	empty := collectionBlob{Votes: nil, LastUpdated: time.Now().UnixMilli()}

	raw, ok, err := s.persistent.Get(CollectionKey)
	if err != nil {
		slog.Warn("vote collection read failed", "error", err)
		return empty
	}
	if !ok {
		return empty
	}

	var blob collectionBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		slog.Warn("vote collection corrupt, resetting", "error", err)
		return empty
	}

	if time.Now().UnixMilli()-blob.LastUpdated > CollectionExpiry.Milliseconds() {
		if err := s.persistent.Delete(CollectionKey); err != nil {
			slog.Warn("failed to drop expired vote collection", "error", err)
		}
		return empty
	}

	return blob
}

func (s *Store) writeCollection(blob collectionBlob) {
	raw, err := json.Marshal(blob)
	if err != nil {
		slog.Warn("vote collection marshal failed", "error", err)
		return
	}
	if err := s.persistent.Set(CollectionKey, string(raw)); err != nil {
		slog.Warn("vote collection write failed", "error", err)
	}
}

func matches(rec models.VoteRecord, roomID string, id identity.Identity) bool {
	if rec.RoomID != roomID {
		return false
	}
	if id.UserID != "" && rec.UserID == id.UserID {
		return true
	}
	if id.GuestID != "" && rec.GuestID == id.GuestID {
		return true
	}
	return false
}

// Record returns the canonical collection record for (roomID, identity), or
// nil if none exists. The write invariant keeps at most one match.
func (s *Store) Record(roomID string, id identity.Identity) *models.VoteRecord {
	blob := s.readCollection()
	for i := range blob.Votes {
		if matches(blob.Votes[i], roomID, id) {
			return &blob.Votes[i]
		}
	}
	return nil
}

// SaveRecord writes a record into the canonical collection, replacing any
// prior record for the same (roomID, identity). A write re-initializes the
// collection's lastUpdated stamp.
func (s *Store) SaveRecord(roomID, option string, id identity.Identity) {
	blob := s.readCollection()

	kept := blob.Votes[:0]
	for _, rec := range blob.Votes {
		if !matches(rec, roomID, id) {
			kept = append(kept, rec)
		}
	}
	blob.Votes = append(kept, models.VoteRecord{
		RoomID:    roomID,
		Option:    option,
		Timestamp: time.Now().UnixMilli(),
		UserID:    id.UserID,
		GuestID:   id.GuestID,
	})
	blob.LastUpdated = time.Now().UnixMilli()
	s.writeCollection(blob)
}

// RemoveRecord drops the canonical record for (roomID, identity), if any.
func (s *Store) RemoveRecord(roomID string, id identity.Identity) {
	blob := s.readCollection()

	kept := blob.Votes[:0]
	for _, rec := range blob.Votes {
		if !matches(rec, roomID, id) {
			kept = append(kept, rec)
		}
	}
	blob.Votes = kept
	blob.LastUpdated = time.Now().UnixMilli()
	s.writeCollection(blob)
}

// AllRecords returns every record in the canonical collection.
func (s *Store) AllRecords() []models.VoteRecord {
	return s.readCollection().Votes
}

// Simple flag surface. This is the hard fast-path gate: checked before any
// network call, written on every confirmed vote, never expired.

func (s *Store) SimpleFlag(roomID string, id identity.Identity) bool {
	v, ok, err := s.persistent.Get(simpleFlagKey(roomID, id))
	if err != nil {
		slog.Warn("simple flag read failed", "room_id", roomID, "error", err)
		return false
	}
	return ok && v == "true"
}

// MarkSimpleFlag sets the simple flag alone. Used when the server reports a
// duplicate so the next attempt short-circuits locally.
func (s *Store) MarkSimpleFlag(roomID string, id identity.Identity) {
	if err := s.persistent.Set(simpleFlagKey(roomID, id), "true"); err != nil {
		slog.Warn("simple flag write failed", "room_id", roomID, "error", err)
	}
}

// Session flag surface: a {roomId: true} map living for one process.

func (s *Store) SessionFlag(roomID string) bool {
	m := s.readSessionMap()
	return m[roomID]
}

func (s *Store) readSessionMap() map[string]bool {
	raw, ok, err := s.session.Get(sessionKey)
	if err != nil || !ok {
		return map[string]bool{}
	}
	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]bool{}
	}
	return m
}

func (s *Store) writeSessionMap(m map[string]bool) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := s.session.Set(sessionKey, string(raw)); err != nil {
		slog.Warn("session flag write failed", "error", err)
	}
}

// Cookie flag surface.

func (s *Store) CookieFlag(roomID string) bool {
	v, ok := s.jar.Get(cookieFlagName(roomID))
	return ok && v == "true"
}

// Fingerprint flag surface.

func (s *Store) FingerprintFlag(roomID string) bool {
	v, ok, err := s.persistent.Get(s.fingerprintKey(roomID))
	if err != nil {
		slog.Warn("fingerprint flag read failed", "room_id", roomID, "error", err)
		return false
	}
	return ok && v == "true"
}

// VoteTimestamp returns the recorded cast instant for a room, if any.
func (s *Store) VoteTimestamp(roomID string) (time.Time, bool) {
	v, ok, err := s.persistent.Get(timestampKey(roomID))
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasVotedAnywhere is the OR-aggregate over every surface. It drives soft,
// informational messaging only; the submission fast path gates on SimpleFlag
// alone.
func (s *Store) HasVotedAnywhere(roomID string, id identity.Identity) bool {
	return s.Record(roomID, id) != nil ||
		s.SimpleFlag(roomID, id) ||
		s.SessionFlag(roomID) ||
		s.CookieFlag(roomID) ||
		s.FingerprintFlag(roomID)
}

// WriteVote records a confirmed vote on every surface. Atomic only from the
// caller's perspective: each surface is written independently and a failing
// surface never aborts the rest.
func (s *Store) WriteVote(roomID, option string, id identity.Identity) {
	s.SaveRecord(roomID, option, id)
	s.MarkSimpleFlag(roomID, id)

	m := s.readSessionMap()
	m[roomID] = true
	s.writeSessionMap(m)

	if err := s.jar.Set(cookieFlagName(roomID), "true", CookieFlagLifetime); err != nil {
		slog.Warn("cookie flag write failed", "room_id", roomID, "error", err)
	}

	if err := s.persistent.Set(s.fingerprintKey(roomID), "true"); err != nil {
		slog.Warn("fingerprint flag write failed", "room_id", roomID, "error", err)
	}

	if err := s.persistent.Set(timestampKey(roomID), time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("vote timestamp write failed", "room_id", roomID, "error", err)
	}
}

// ClearVote removes the vote for a room from every surface. Exposed for the
// debug/testing flow; production code only clears via SyncWithServer.
func (s *Store) ClearVote(roomID string, id identity.Identity) {
	s.RemoveRecord(roomID, id)

	if err := s.persistent.Delete(simpleFlagKey(roomID, id)); err != nil {
		slog.Warn("simple flag delete failed", "room_id", roomID, "error", err)
	}

	m := s.readSessionMap()
	delete(m, roomID)
	s.writeSessionMap(m)

	if err := s.jar.Delete(cookieFlagName(roomID)); err != nil {
		slog.Warn("cookie flag delete failed", "room_id", roomID, "error", err)
	}

	if err := s.persistent.Delete(s.fingerprintKey(roomID)); err != nil {
		slog.Warn("fingerprint flag delete failed", "room_id", roomID, "error", err)
	}

	if err := s.persistent.Delete(timestampKey(roomID)); err != nil {
		slog.Warn("vote timestamp delete failed", "room_id", roomID, "error", err)
	}
}

// SyncWithServer reconciles local evidence with an authoritative server
// answer. A server vote overwrites the canonical record (the user may have
// voted from another device); a server null clears local evidence (the local
// write may never have persisted server-side).
func (s *Store) SyncWithServer(roomID string, serverVote *models.UserVote, id identity.Identity) {
	if serverVote != nil {
		s.SaveRecord(roomID, serverVote.Option, id)
		s.MarkSimpleFlag(roomID, id)
		return
	}
	s.ClearVote(roomID, id)
}
