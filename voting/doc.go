// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting holds the vote-state reconciler and the guarded submission
flow.

# Reconciliation

CheckVoteStatus asks the server first and adopts its answer verbatim,
syncing local evidence down to match (a server vote overwrites the canonical
record, a server null clears it). When the server is unreachable, the status
is synthesized from local evidence with permissive room defaults. It never
returns an error.

# Submission

CastVote runs a linear state machine with no retries:

 1. resolve identity
 2. fast-path duplicate check on the simple flag — a hit rejects with
    DUPLICATE_VOTE_LOCAL and makes no network call
 3. POST the vote; the server is the sole authority on acceptance
 4. on success, write through to every evidence surface and refresh status
    and results concurrently
 5. on failure, classify the error; a server-detected duplicate also sets
    the simple flag so the next attempt short-circuits locally

The in-flight option is held in votingForOption for the duration of the cast
and cleared unconditionally, so a failure never leaves an option disabled.

Two tabs racing past step 2 before either writes the flag will both reach
the server; the server rejects the second as a duplicate and the
DUPLICATE_VOTE path repairs the local flag. No client-side locking is
attempted across processes.
*/
package voting
