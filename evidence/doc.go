// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package evidence merges the redundant local vote-tracking surfaces into one
store.

# Surfaces

Five surfaces independently record "this identity voted in room R", each with
its own lifetime:

  - canonical collection: one JSON blob of VoteRecords in the persistent
    store, expired wholesale 7 days after its last update
  - simple flag: voted_<roomId>_<identity> = "true", persistent, never expires
  - session flag: {roomId: true} map, process lifetime
  - cookie flag: voted_<roomId> = "true" in the cookie jar, 30 days
  - fingerprint flag: fp_<fingerprint>_<roomId> = "true", persistent

A vote_time_<roomId> timestamp entry is written alongside for diagnostics.

# Aggregation

HasVotedAnywhere ORs every surface and feeds soft messaging only. The hard
duplicate gate in the submission flow reads the simple flag alone: it is the
cheapest, least-stale-prone surface, and keeping the gate on a single surface
avoids drift between the redundant ones.

# Failure semantics

Every operation is best-effort. A surface that errors is logged and skipped,
reads treat failure as "not voted", and WriteVote keeps writing the remaining
surfaces when one throws. Local evidence is a cache of server truth, never
the authority.
*/
package evidence
