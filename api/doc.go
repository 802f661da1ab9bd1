// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package api is the HTTP client for the remote VoteSpace service.

# Endpoints

Voting core:

	GET  /votes/{roomId}/status  → VoteStatus (guests welcome)
	POST /votes/{roomId}         → CastVote
	GET  /votes/{roomId}/results → VoteResults
	GET  /votes/{roomId}/my-vote → MyVote (auth)
	GET  /votes/my-votes         → MyVotes (auth)

Rooms (outside the core): RoomDetails, CreateRoom, JoinRoom.

Every success payload arrives in a {status, data} envelope. The client
decodes exactly that shape and fails fast on anything else; there is
deliberately no fallback chain of alternative nestings.

# Error taxonomy

CastVote failures are classified against a closed sentinel set by matching
fixed server-message substrings (see errors.go). Transport failures (no
response at all) are wrapped in ErrNetwork and never reinterpreted as
business-rule errors. Unclassified messages pass through verbatim.

# Guest identity

A guest id set via SetGuestID rides on the anonymousId cookie, which is how
the server attributes guest votes.
*/
package api
