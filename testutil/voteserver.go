// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/votespace/votespace-go/models"
)

// VoteServer is an in-process fake of the VoteSpace backend. Room state is
// programmable per test, and every endpoint counts its calls so tests can
// assert that the fast path made no network request.
type VoteServer struct {
	mu       sync.Mutex
	statuses map[string]models.VoteStatus // scripted status per room
	castErrs map[string]string            // scripted cast rejection message per room
	results  map[string]models.ResultsRoom
	votes    map[string]models.UserVote // (roomID|identity) -> accepted vote
	calls    map[string]int

	srv *httptest.Server
}

// NewVoteServer starts the fake backend with routes mirroring the real API.
// It shuts down automatically when the test finishes.
func NewVoteServer(t *testing.T) *VoteServer {
	t.Helper()

	s := &VoteServer{
		statuses: make(map[string]models.VoteStatus),
		castErrs: make(map[string]string),
		results:  make(map[string]models.ResultsRoom),
		votes:    make(map[string]models.UserVote),
		calls:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /votes/{roomId}/status", s.handleStatus)
	mux.HandleFunc("POST /votes/{roomId}", s.handleCast)
	mux.HandleFunc("GET /votes/{roomId}/results", s.handleResults)
	mux.HandleFunc("GET /votes/{roomId}/my-vote", s.handleMyVote)
	mux.HandleFunc("GET /votes/my-votes", s.handleMyVotes)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *VoteServer) URL() string { return s.srv.URL }

// Close stops the server early (before test cleanup) to simulate an
// unreachable backend.
func (s *VoteServer) Close() { s.srv.Close() }

// SetStatus scripts the status response for a room.
func (s *VoteServer) SetStatus(roomID string, status models.VoteStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[roomID] = status
}

// FailCastWith makes POST /votes/{roomID} reject with the given message.
func (s *VoteServer) FailCastWith(roomID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.castErrs[roomID] = message
}

// SetResults scripts the results response for a room.
func (s *VoteServer) SetResults(roomID string, room models.ResultsRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[roomID] = room
}

// Calls returns how many requests hit an endpoint, keyed "METHOD path",
// e.g. Calls("POST", "/votes/r1").
func (s *VoteServer) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// CastCalls returns how many cast attempts a room received.
func (s *VoteServer) CastCalls(roomID string) int {
	return s.Calls("POST", "/votes/"+roomID)
}

func (s *VoteServer) count(r *http.Request) {
	s.mu.Lock()
	s.calls[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()
}

// callerIdentity mirrors how the real backend attributes requests: bearer
// token first, anonymousId cookie otherwise.
func callerIdentity(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie("anonymousId"); err == nil {
		return c.Value
	}
	return ""
}

func (s *VoteServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	roomID := r.PathValue("roomId")

	s.mu.Lock()
	status, scripted := s.statuses[roomID]
	vote, voted := s.votes[roomID+"|"+callerIdentity(r)]
	s.mu.Unlock()

	if !scripted {
		status = models.VoteStatus{
			CanVote: true,
			Room:    models.RoomStatus{ID: roomID, Title: "Test Room", IsActive: true},
			Message: "You can cast your vote",
		}
		if voted {
			status.HasVoted = true
			status.CanVote = false
			status.UserVote = &vote
			status.Message = "You have already voted"
		}
	}

	JSONResponse(w, http.StatusOK, Envelope(status))
}

func (s *VoteServer) handleCast(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	roomID := r.PathValue("roomId")

	var req models.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	if msg, ok := s.castErrs[roomID]; ok {
		s.mu.Unlock()
		ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	key := roomID + "|" + callerIdentity(r)
	if _, ok := s.votes[key]; ok {
		s.mu.Unlock()
		ErrorResponse(w, http.StatusConflict, "Vote already exists for this room")
		return
	}

	vote := models.UserVote{
		ID:        uuid.NewString(),
		Option:    req.Option,
		CreatedAt: time.Now().UTC(),
	}
	s.votes[key] = vote
	s.mu.Unlock()

	JSONResponse(w, http.StatusCreated, Envelope(models.CastVoteResponse{
		Vote:    &vote,
		Message: "Vote cast successfully",
	}))
}

func (s *VoteServer) handleResults(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	roomID := r.PathValue("roomId")

	s.mu.Lock()
	room, ok := s.results[roomID]
	s.mu.Unlock()

	if !ok {
		room = models.ResultsRoom{Results: []models.VoteResult{}}
	}
	JSONResponse(w, http.StatusOK, Envelope(models.VoteResultsResponse{Room: room}))
}

func (s *VoteServer) handleMyVote(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if r.Header.Get("Authorization") == "" {
		ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	roomID := r.PathValue("roomId")

	s.mu.Lock()
	vote, ok := s.votes[roomID+"|"+callerIdentity(r)]
	s.mu.Unlock()

	resp := models.MyVoteResponse{}
	if ok {
		resp.Vote = &vote
	}
	JSONResponse(w, http.StatusOK, Envelope(resp))
}

func (s *VoteServer) handleMyVotes(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if r.Header.Get("Authorization") == "" {
		ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	id := callerIdentity(r)

	s.mu.Lock()
	var votes []models.UserVote
	for key, vote := range s.votes {
		if strings.HasSuffix(key, "|"+id) {
			votes = append(votes, vote)
		}
	}
	s.mu.Unlock()

	JSONResponse(w, http.StatusOK, Envelope(models.MyVotesResponse{Votes: votes}))
}

// Envelope wraps a payload in the {status, data} shape the API speaks.
func Envelope(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
