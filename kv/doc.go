// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kv provides the key-value stores underneath the evidence surfaces.

Two implementations of the Store interface exist:

  - Pebble: durable, on-disk (the persistent-storage analogue)
  - Memory: process lifetime only (the session-storage analogue)

Both are string-to-string maps with no expiry semantics of their own; any
expiry policy belongs to the surface built on top (see package evidence).
*/
package kv
