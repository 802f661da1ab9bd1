// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire and domain types shared across the VoteSpace
client.

# Type Groups

  - Domain types: User, VoteRecord, UserVote, VoteStatus, VoteResult, Room
  - Request types: CastVoteRequest, JoinRoomRequest, CreateRoomRequest
  - Response types: CastVoteResponse, VoteResultsResponse, MyVoteResponse

# VoteStatus

VoteStatus is the reconciled answer to "can/has this identity voted in this
room". It is derived, never stored: the reconciler recomputes it from the
latest remote check when the server is reachable and from local evidence when
it is not.

# VoteRecord

VoteRecord is the canonical local evidence entry. At most one record is
retained per (roomId, identity) pair; writing a new one replaces the prior
record (last-write-wins). Options are identified by their exact text.
*/
package models
