// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"errors"
	"strings"
)

// The closed error taxonomy surfaced to callers. Sentinel messages are
// stable: UI copy keys off these, never off backend wording.
var (
	// ErrDuplicateVoteLocal is raised by the submission fast path before any
	// network call is made.
	ErrDuplicateVoteLocal = errors.New("DUPLICATE_VOTE_LOCAL")

	// ErrDuplicateVote is the server-detected duplicate.
	ErrDuplicateVote = errors.New("DUPLICATE_VOTE")

	ErrCreatorCannotVote = errors.New("CREATOR_CANNOT_VOTE")
	ErrVotingClosed      = errors.New("VOTING_CLOSED")
	ErrDeadlinePassed    = errors.New("DEADLINE_PASSED")
	ErrInvalidOption     = errors.New("INVALID_OPTION")

	// ErrNetwork marks transport-level failures (no HTTP response at all),
	// distinguishing "server unreachable" from "server said no".
	ErrNetwork = errors.New("network error: unable to connect to the server")
)

// HTTPError is a non-2xx response with the server's message preserved
// verbatim for the unclassified case.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// duplicate signatures include the foreign-key-constraint wording some
// backend versions leak when the vote row already exists.
var duplicateSignatures = []string{
	"Vote already exists",
	"already voted",
	"already cast",
}

// ClassifyVoteError maps a cast failure onto the closed taxonomy by matching
// fixed substrings of the server message. Unrecognized errors pass through
// verbatim. Transport errors are never reinterpreted as business rules.
func ClassifyVoteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNetwork) {
		return err
	}

	msg := err.Error()

	for _, sig := range duplicateSignatures {
		if strings.Contains(msg, sig) {
			return ErrDuplicateVote
		}
	}
	if strings.Contains(msg, "Foreign key constraint") && strings.Contains(msg, "votes_userId_fkey") {
		return ErrDuplicateVote
	}
	if strings.Contains(msg, "Room creators cannot vote") {
		return ErrCreatorCannotVote
	}
	if strings.Contains(msg, "Voting is closed") {
		return ErrVotingClosed
	}
	if strings.Contains(msg, "deadline has passed") {
		return ErrDeadlinePassed
	}
	if strings.Contains(msg, "Invalid option") {
		return ErrInvalidOption
	}

	return err
}
