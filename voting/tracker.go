// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/votespace/votespace-go/api"
	"github.com/votespace/votespace-go/evidence"
	"github.com/votespace/votespace-go/identity"
	"github.com/votespace/votespace-go/models"
)

// Fallback status messages used when the server is unreachable.
const (
	msgVotedLocally = "You have already voted (cached locally)"
	msgCanVote      = "You can cast your vote"
	msgDuplicate    = "You have already voted in this room!"
)

// NoticeDismissAfter is how long the transient duplicate notice stays up.
const NoticeDismissAfter = 4 * time.Second

// Notice is a transient, auto-dismissing message (the duplicate-vote popup).
type Notice struct {
	Message      string
	DismissAfter time.Duration
}

// NoticeFunc receives duplicate notices. Nil is fine; notices are then
// dropped.
type NoticeFunc func(Notice)

// Tracker owns the vote state for one room view: it reconciles local
// evidence with server truth and guards the act of casting a vote.
type Tracker struct {
	client   *api.Client
	store    *evidence.Store
	resolver *identity.Resolver
	onNotice NoticeFunc

	mu              sync.Mutex
	user            *models.User
	votingForOption string
	voteStatus      *models.VoteStatus
	userVote        *models.UserVote
	voteResults     []models.VoteResult
	totalVotes      int
}

func NewTracker(client *api.Client, store *evidence.Store, resolver *identity.Resolver) *Tracker {
	return &Tracker{client: client, store: store, resolver: resolver}
}

// SetUser sets the authenticated user (nil for guests). Must be called
// before voting operations when a login state changes.
func (t *Tracker) SetUser(user *models.User) {
	t.mu.Lock()
	t.user = user
	t.mu.Unlock()
}

// OnNotice registers the duplicate-notice callback.
func (t *Tracker) OnNotice(fn NoticeFunc) {
	t.mu.Lock()
	t.onNotice = fn
	t.mu.Unlock()
}

// Identity resolves the current actor and keeps the API client's guest
// cookie in sync.
func (t *Tracker) Identity() identity.Identity {
	t.mu.Lock()
	user := t.user
	t.mu.Unlock()

	id := t.resolver.Resolve(user)
	if id.IsGuest() {
		t.client.SetGuestID(id.GuestID)
	}
	return id
}

func (t *Tracker) notify(message string) {
	t.mu.Lock()
	fn := t.onNotice
	t.mu.Unlock()
	if fn != nil {
		fn(Notice{Message: message, DismissAfter: NoticeDismissAfter})
	}
}

// CheckVoteStatus reconciles the vote state for a room. The server is asked
// first and its answer adopted verbatim, with local evidence synced down to
// match. When the server is unreachable the status is synthesized from the
// canonical local record with permissive room defaults. Never returns an
// error: every failure path resolves to a best-effort status.
func (t *Tracker) CheckVoteStatus(ctx context.Context, roomID string) models.VoteStatus {
	id := t.Identity()

	status, err := t.client.VoteStatus(ctx, roomID)
	if err == nil {
		t.store.SyncWithServer(roomID, status.UserVote, id)

		t.mu.Lock()
		t.voteStatus = status
		t.userVote = status.UserVote
		t.mu.Unlock()
		return *status
	}

	slog.Debug("vote status check failed, falling back to local evidence",
		"room_id", roomID, "error", err)

	rec := t.store.Record(roomID, id)
	fallback := models.VoteStatus{
		HasVoted: rec != nil,
		CanVote:  rec == nil,
		Room: models.RoomStatus{
			ID:       roomID,
			IsActive: true,
		},
		Message: msgCanVote,
	}
	if rec != nil {
		fallback.Message = msgVotedLocally
		fallback.UserVote = &models.UserVote{
			ID:        "local",
			Option:    rec.Option,
			CreatedAt: time.UnixMilli(rec.Timestamp).UTC(),
		}
	}

	t.mu.Lock()
	t.voteStatus = &fallback
	t.userVote = fallback.UserVote
	t.mu.Unlock()
	return fallback
}

// CastVote submits a vote for an option in a room.
//
// The flow is linear, with no retries: resolve identity, check the simple
// local flag (rejecting duplicates without touching the network), cast, and
// on success write through to every evidence surface before refreshing
// status and results concurrently. A server-detected duplicate also sets the
// simple flag so the next attempt short-circuits locally.
func (t *Tracker) CastVote(ctx context.Context, roomID string, req models.CastVoteRequest) (*models.CastVoteResponse, error) {
	id := t.Identity()

	if t.store.SimpleFlag(roomID, id) {
		slog.Info("duplicate vote blocked locally", "room_id", roomID)
		t.notify(msgDuplicate)
		return nil, api.ErrDuplicateVoteLocal
	}

	t.mu.Lock()
	t.votingForOption = req.Option
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.votingForOption = ""
		t.mu.Unlock()
	}()

	resp, err := t.client.CastVote(ctx, roomID, req)
	if err != nil {
		if errors.Is(err, api.ErrDuplicateVote) {
			t.store.MarkSimpleFlag(roomID, id)
			t.notify(msgDuplicate)
		}
		return nil, err
	}

	t.store.WriteVote(roomID, req.Option, id)
	slog.Info("vote cast", "room_id", roomID, "option", req.Option, "guest", id.IsGuest())

	// Status and results refreshes are independent; fire both and wait.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.CheckVoteStatus(ctx, roomID)
	}()
	go func() {
		defer wg.Done()
		t.VoteResults(ctx, roomID)
	}()
	wg.Wait()

	return resp, nil
}

// VoteResults fetches and caches the server aggregates for a room. A failed
// fetch yields an empty result set, never an error.
func (t *Tracker) VoteResults(ctx context.Context, roomID string) models.ResultsRoom {
	room, err := t.client.VoteResults(ctx, roomID)
	if err != nil {
		slog.Debug("could not fetch vote results", "room_id", roomID, "error", err)
		t.mu.Lock()
		t.voteResults = nil
		t.totalVotes = 0
		t.mu.Unlock()
		return models.ResultsRoom{Results: []models.VoteResult{}}
	}

	t.mu.Lock()
	t.voteResults = room.Results
	t.totalVotes = room.TotalVotes
	t.mu.Unlock()
	return *room
}

// MyVoteInRoom fetches the caller's vote from the server, falling back to
// the canonical local record when the fetch fails (typically: guest against
// an auth-only endpoint, or the server is down).
func (t *Tracker) MyVoteInRoom(ctx context.Context, roomID string) *models.UserVote {
	id := t.Identity()

	vote, err := t.client.MyVote(ctx, roomID)
	if err == nil {
		t.store.SyncWithServer(roomID, vote, id)
		t.mu.Lock()
		t.userVote = vote
		t.mu.Unlock()
		return vote
	}

	slog.Debug("could not fetch user vote", "room_id", roomID, "error", err)

	rec := t.store.Record(roomID, id)
	if rec == nil {
		t.mu.Lock()
		t.userVote = nil
		t.mu.Unlock()
		return nil
	}
	local := &models.UserVote{
		ID:        "local",
		Option:    rec.Option,
		CreatedAt: time.UnixMilli(rec.Timestamp).UTC(),
	}
	t.mu.Lock()
	t.userVote = local
	t.mu.Unlock()
	return local
}

// MyVotes lists every vote the authenticated user has cast. Empty on
// failure.
func (t *Tracker) MyVotes(ctx context.Context) []models.UserVote {
	votes, err := t.client.MyVotes(ctx)
	if err != nil {
		slog.Debug("could not fetch user votes", "error", err)
		return nil
	}
	return votes
}

// ClearVote wipes local evidence for a room. Debug/testing flow only; the
// server's vote record is untouched.
func (t *Tracker) ClearVote(roomID string) {
	t.store.ClearVote(roomID, t.Identity())
}

// Accessors over the in-memory view state.

func (t *Tracker) VotingForOption() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.votingForOption
}

// IsVotingFor reports whether a cast for this specific option is in flight,
// so callers can disable only that option's affordance.
func (t *Tracker) IsVotingFor(option string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.votingForOption == option
}

func (t *Tracker) HasVoted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voteStatus != nil && t.voteStatus.HasVoted
}

func (t *Tracker) CanVote() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voteStatus != nil && t.voteStatus.CanVote
}

func (t *Tracker) IsRoomCreator() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voteStatus != nil && t.voteStatus.Room.IsCreator
}

// UserVoteOption returns the option the caller voted for, or "" when none is
// known.
func (t *Tracker) UserVoteOption() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.voteStatus != nil && t.voteStatus.UserVote != nil {
		return t.voteStatus.UserVote.Option
	}
	if t.userVote != nil {
		return t.userVote.Option
	}
	return ""
}

func (t *Tracker) Results() ([]models.VoteResult, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voteResults, t.totalVotes
}

// HasVotedLocally is the fast simple-flag read for a room.
func (t *Tracker) HasVotedLocally(roomID string) bool {
	return t.store.SimpleFlag(roomID, t.Identity())
}

// HasVotedAnywhere is the soft OR-aggregate over every evidence surface.
func (t *Tracker) HasVotedAnywhere(roomID string) bool {
	return t.store.HasVotedAnywhere(roomID, t.Identity())
}

// LocalVoteTime returns when this device last recorded a cast for the room.
func (t *Tracker) LocalVoteTime(roomID string) (time.Time, bool) {
	return t.store.VoteTimestamp(roomID)
}
