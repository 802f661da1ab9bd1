// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity resolves the actor used for vote tracking.

An authenticated user resolves to their server-issued user id. Anyone else
resolves to a guest id of the form guest_<epochMs>_<base36 suffix>, generated
once and persisted in the anonymousId cookie with a 30-day lifetime. The
resolver always reads before it writes, so a guest id is never regenerated
while the cookie survives.

This is a UX-layer identity, not a security boundary: clearing the cookie
yields a fresh guest. The server remains the final arbiter of duplicates.
*/
package identity
