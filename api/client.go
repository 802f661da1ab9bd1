// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/votespace/votespace-go/models"
)

// DefaultBaseURL is the hosted VoteSpace API.
const DefaultBaseURL = "https://votingspace.onrender.com/api/v1"

// envelope is the single response shape the backend speaks: every success
// payload sits under data. Responses missing data are rejected at this
// boundary instead of being unwrapped speculatively downstream.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the remote VoteSpace API. The zero value is not usable;
// construct with New. Safe for concurrent use: the credential fields may be
// updated while requests are in flight.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	token   string
	guestID string
}

type Config struct {
	BaseURL string
	// Token is the bearer token for authenticated endpoints. Optional; when
	// set it is attached to every request, matching the hosted UI.
	Token string
	// HTTPClient overrides the default transport, mainly for tests.
	HTTPClient *http.Client
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: base, http: hc, token: cfg.Token}
}

// SetGuestID sets the guest id sent as the anonymousId cookie, the transport
// the server uses to attribute guest votes.
func (c *Client) SetGuestID(guestID string) {
	c.mu.Lock()
	c.guestID = guestID
	c.mu.Unlock()
}

// SetToken replaces the bearer token (after login/logout).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// credentials snapshots the token and guest id for one request.
func (c *Client) credentials() (token, guestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.guestID
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	token, guestID := c.credentials()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if guestID != "" {
		req.AddCookie(&http.Cookie{Name: "anonymousId", Value: guestID})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e models.ErrorResponse
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			msg = e.Message
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed response for %s %s: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("malformed response for %s %s: missing data", method, path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("malformed response for %s %s: %w", method, path, err)
	}
	return nil
}

// VoteStatus fetches the authoritative vote status for a room. Works for
// guests; the guest id rides on the anonymousId cookie.
func (c *Client) VoteStatus(ctx context.Context, roomID string) (*models.VoteStatus, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}
	var status models.VoteStatus
	if err := c.do(ctx, http.MethodGet, "/votes/"+roomID+"/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CastVote submits a vote. Failures come back classified against the closed
// taxonomy; the server is the sole authority on acceptance.
func (c *Client) CastVote(ctx context.Context, roomID string, req models.CastVoteRequest) (*models.CastVoteResponse, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}
	var out models.CastVoteResponse
	if err := c.do(ctx, http.MethodPost, "/votes/"+roomID, req, &out); err != nil {
		return nil, ClassifyVoteError(err)
	}
	return &out, nil
}

// VoteResults fetches the server-computed aggregates for a room.
func (c *Client) VoteResults(ctx context.Context, roomID string) (*models.ResultsRoom, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}
	var out models.VoteResultsResponse
	if err := c.do(ctx, http.MethodGet, "/votes/"+roomID+"/results", nil, &out); err != nil {
		return nil, err
	}
	return &out.Room, nil
}

// MyVote fetches the caller's vote in a room. Requires authentication.
func (c *Client) MyVote(ctx context.Context, roomID string) (*models.UserVote, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}
	var out models.MyVoteResponse
	if err := c.do(ctx, http.MethodGet, "/votes/"+roomID+"/my-vote", nil, &out); err != nil {
		return nil, err
	}
	return out.Vote, nil
}

// MyVotes fetches every vote the authenticated user has cast.
func (c *Client) MyVotes(ctx context.Context) ([]models.UserVote, error) {
	var out models.MyVotesResponse
	if err := c.do(ctx, http.MethodGet, "/votes/my-votes", nil, &out); err != nil {
		return nil, err
	}
	return out.Votes, nil
}

// Room endpoints consumed outside the voting core.

func (c *Client) RoomDetails(ctx context.Context, roomID string) (*models.Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}
	var out models.RoomResponse
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID, nil, &out); err != nil {
		return nil, err
	}
	return &out.Room, nil
}

func (c *Client) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.Room, error) {
	var out models.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", req, &out); err != nil {
		return nil, err
	}
	return &out.Room, nil
}

func (c *Client) JoinRoom(ctx context.Context, joinCode string) (*models.Room, error) {
	if joinCode == "" {
		return nil, fmt.Errorf("join code is required")
	}
	var out models.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms/join", models.JoinRoomRequest{JoinCode: joinCode}, &out); err != nil {
		return nil, err
	}
	return &out.Room, nil
}
