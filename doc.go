// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the votespace command-line client.

VoteSpace is a collaborative voting service: rooms with a title and a set of
options, shareable by join code, one vote per participant. This client talks
to the hosted API and keeps redundant local evidence of past votes so
duplicate submissions are rejected before they ever reach the network.

# Usage

	votespace status <roomId>
	votespace vote <roomId> <option>
	votespace results <roomId>
	votespace watch <roomId>

Configuration comes from flags, environment variables, or an optional
~/.votespace/config.yaml; see package cliparse.

# Architecture

The client is assembled from small packages with dependency injection:

  - identity: resolves the actor (user id or persisted guest id)
  - fingerprint: coarse device fingerprint for one evidence surface
  - kv, cookiejar: the storage primitives (pebble, in-memory, sqlite)
  - evidence: the merged local vote-evidence store
  - api: the HTTP client with the closed error taxonomy
  - voting: reconciler, submission flow, and results watcher

Local evidence is a UX-layer heuristic. The server is always the final
arbiter of duplicates; this client defers to it whenever it is reachable.
*/
package main
