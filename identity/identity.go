// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/models"
)

// CookieName is the cookie holding the persistent guest id.
const CookieName = "anonymousId"

// GuestIDLifetime matches the 30-day cookie lifetime used by the hosted UI.
const GuestIDLifetime = 30 * 24 * time.Hour

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// Identity is the resolved actor for vote-tracking purposes. Exactly one of
// UserID/GuestID is set.
type Identity struct {
	UserID  string
	GuestID string
}

// Key returns the single identifier used in storage keys: the user id when
// authenticated, the guest id otherwise.
func (id Identity) Key() string {
	if id.UserID != "" {
		return id.UserID
	}
	return id.GuestID
}

// IsGuest reports whether the identity is an anonymous one.
func (id Identity) IsGuest() bool {
	return id.UserID == ""
}

// Resolver derives a stable per-installation identity, persisting guest ids
// in the cookie jar.
type Resolver struct {
	Jar *cookiejar.Jar
}

func NewResolver(jar *cookiejar.Jar) *Resolver {
	return &Resolver{Jar: jar}
}

// Resolve returns the identity for the given user. For guests it reads the
// anonymousId cookie before ever writing one, so an existing guest id is
// never regenerated. Cookie write failures are logged and ignored; the
// freshly generated id is still returned, degrading to a new guest id per
// call.
func (r *Resolver) Resolve(user *models.User) Identity {
	if user != nil {
		return Identity{UserID: user.ID}
	}

	if v, ok := r.Jar.Get(CookieName); ok && v != "" {
		return Identity{GuestID: v}
	}

	guestID := NewGuestID(time.Now())
	if err := r.Jar.Set(CookieName, guestID, GuestIDLifetime); err != nil {
		slog.Warn("failed to persist guest id", "error", err)
	} else {
		slog.Info("created new guest id", "guest_id", guestID)
	}
	return Identity{GuestID: guestID}
}

// NewGuestID synthesizes a guest id of the form
// guest_<epochMs>_<9-char base36 suffix>.
func NewGuestID(now time.Time) string {
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), randBase36(9))
}

// randBase36 returns n random base-36 characters. The modulo bias from
// mapping 256 values onto 36 is irrelevant here; the suffix only needs to
// avoid collisions, not be uniform.
func randBase36(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to
		// a time-derived suffix so identity resolution still succeeds.
		for i := range b {
			b[i] = base36Chars[(time.Now().UnixNano()>>uint(i*4))%36]
		}
		return string(b)
	}
	for i := range b {
		b[i] = base36Chars[int(b[i])%len(base36Chars)]
	}
	return string(b)
}
