// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/votespace/votespace-go/models"
)

func castReq(option string) models.CastVoteRequest {
	return models.CastVoteRequest{Option: option}
}

func TestClassifyVoteError(t *testing.T) {
	cases := []struct {
		message string
		want    error
	}{
		{"Vote already exists for this room", ErrDuplicateVote},
		{"You have already voted in this room", ErrDuplicateVote},
		{"Ballot already cast", ErrDuplicateVote},
		{"Foreign key constraint failed on votes_userId_fkey", ErrDuplicateVote},
		{"Room creators cannot vote in their own rooms", ErrCreatorCannotVote},
		{"Voting is closed for this room", ErrVotingClosed},
		{"The voting deadline has passed", ErrDeadlinePassed},
		{"Invalid option selected", ErrInvalidOption},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			got := ClassifyVoteError(errors.New(tc.message))
			if !errors.Is(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestClassifySentinelMessages(t *testing.T) {
	// UI copy keys off these exact strings.
	if ErrDuplicateVote.Error() != "DUPLICATE_VOTE" {
		t.Errorf("Unexpected sentinel %q", ErrDuplicateVote.Error())
	}
	if ErrDuplicateVoteLocal.Error() != "DUPLICATE_VOTE_LOCAL" {
		t.Errorf("Unexpected sentinel %q", ErrDuplicateVoteLocal.Error())
	}
}

func TestClassifyPreservesUnknownErrors(t *testing.T) {
	original := errors.New("the database is on fire")
	if got := ClassifyVoteError(original); got != original {
		t.Errorf("Expected unknown error preserved verbatim, got %v", got)
	}
}

func TestClassifyNeverReinterpretsNetworkErrors(t *testing.T) {
	// A proxy page could echo business-rule wording; transport failures must
	// stay transport failures.
	err := fmt.Errorf("%w: proxy said already voted", ErrNetwork)
	got := ClassifyVoteError(err)
	if !errors.Is(got, ErrNetwork) {
		t.Errorf("Expected network error preserved, got %v", got)
	}
	if errors.Is(got, ErrDuplicateVote) {
		t.Error("Network error was reinterpreted as a duplicate")
	}
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(Config{BaseURL: srv.URL}), srv
}

func TestVoteStatusDecodesEnvelope(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/votes/r1/status" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","data":{
			"hasVoted":true,"canVote":false,
			"userVote":{"id":"v1","option":"Pizza","createdAt":"2025-03-01T10:00:00Z"},
			"room":{"id":"r1","title":"Lunch","isActive":true,"allowMultipleVotes":false,"deadline":null,"isCreator":false},
			"message":"You have already voted"}}`)
	})
	defer srv.Close()

	status, err := c.VoteStatus(context.Background(), "r1")
	if err != nil {
		t.Fatalf("VoteStatus failed: %v", err)
	}
	if !status.HasVoted || status.CanVote {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.UserVote == nil || status.UserVote.Option != "Pizza" {
		t.Errorf("Unexpected user vote %+v", status.UserVote)
	}
	if status.Room.Title != "Lunch" {
		t.Errorf("Unexpected room %+v", status.Room)
	}
}

func TestMissingDataFailsFast(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success"}`)
	})
	defer srv.Close()

	if _, err := c.VoteStatus(context.Background(), "r1"); err == nil {
		t.Fatal("Expected an error for a response without data")
	}
}

func TestMalformedJSONFailsFast(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":`)
	})
	defer srv.Close()

	if _, err := c.VoteStatus(context.Background(), "r1"); err == nil {
		t.Fatal("Expected an error for malformed JSON")
	}
}

func TestHTTPErrorCarriesServerMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"Conflict","message":"Voting is closed for this room"}`)
	})
	defer srv.Close()

	_, err := c.CastVote(context.Background(), "r1", castReq("Pizza"))
	if !errors.Is(err, ErrVotingClosed) {
		t.Errorf("Expected VOTING_CLOSED, got %v", err)
	}
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore
	c := New(Config{BaseURL: srv.URL})

	_, err := c.VoteStatus(context.Background(), "r1")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}

	_, err = c.CastVote(context.Background(), "r1", castReq("Pizza"))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected network error from cast, got %v", err)
	}
}

func TestGuestCookieAttached(t *testing.T) {
	var gotCookie string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("anonymousId"); err == nil {
			gotCookie = ck.Value
		}
		fmt.Fprint(w, `{"status":"success","data":{"hasVoted":false,"canVote":true,"userVote":null,"room":{"id":"r1","title":"","isActive":true,"allowMultipleVotes":false,"deadline":null,"isCreator":false},"message":"ok"}}`)
	})
	defer srv.Close()

	c.SetGuestID("guest_1_abcdefghi")
	if _, err := c.VoteStatus(context.Background(), "r1"); err != nil {
		t.Fatalf("VoteStatus failed: %v", err)
	}
	if gotCookie != "guest_1_abcdefghi" {
		t.Errorf("Expected guest cookie on request, got %q", gotCookie)
	}
}

func TestCredentialUpdatesDuringRequests(t *testing.T) {
	// The tracker refreshes status and results concurrently after a cast, and
	// each refresh re-resolves identity. Credential writes must be safe while
	// other requests are in flight; run under -race.
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","data":{"hasVoted":false,"canVote":true,"userVote":null,"room":{"id":"r1","title":"","isActive":true,"allowMultipleVotes":false,"deadline":null,"isCreator":false},"message":"ok"}}`)
	})
	defer srv.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetGuestID(fmt.Sprintf("guest_%d_abcdefghi", i))
			c.SetToken(fmt.Sprintf("tok%d", i))
		}(i)
		go func() {
			defer wg.Done()
			if _, err := c.VoteStatus(context.Background(), "r1"); err != nil {
				t.Errorf("VoteStatus failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"status":"success","data":{"votes":[]}}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "tok123"})
	if _, err := c.MyVotes(context.Background()); err != nil {
		t.Fatalf("MyVotes failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Expected bearer token, got %q", gotAuth)
	}
}
