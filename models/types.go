package models

import "time"

// User is the authenticated account as returned by the auth endpoints.
// A nil *User means the caller is a guest.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// VoteRecord is the locally persisted evidence that an identity voted in a
// room. The option text is its own identifier; there are no numeric option
// ids on the client. Exactly one of UserID/GuestID is set.
type VoteRecord struct {
	RoomID    string `json:"roomId"`
	Option    string `json:"option"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	UserID    string `json:"userId,omitempty"`
	GuestID   string `json:"guestId,omitempty"`
}

// UserVote is the server's view of the caller's vote in a room.
type UserVote struct {
	ID        string    `json:"id"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomStatus carries the room eligibility flags embedded in a VoteStatus.
type RoomStatus struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	IsActive           bool       `json:"isActive"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	Deadline           *time.Time `json:"deadline"`
	IsCreator          bool       `json:"isCreator"`
}

// VoteStatus is the reconciled, point-in-time answer to "can/has this
// identity voted in this room". It is recomputed per check, never stored.
type VoteStatus struct {
	HasVoted bool       `json:"hasVoted"`
	CanVote  bool       `json:"canVote"`
	UserVote *UserVote  `json:"userVote"`
	Room     RoomStatus `json:"room"`
	Message  string     `json:"message"`
}

// VoteResult is one option's server-computed aggregate. The client only
// displays these; it never totals votes itself.
type VoteResult struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	VoteCount  int     `json:"voteCount"`
	Percentage float64 `json:"percentage"`
}

// Request types

type CastVoteRequest struct {
	Option        string `json:"option"`
	Justification string `json:"justification,omitempty"`
}

type JoinRoomRequest struct {
	JoinCode string `json:"joinCode"`
}

type CreateRoomRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Options            []string   `json:"options"`
	IsAnonymous        bool       `json:"isAnonymous,omitempty"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
}

// Response types

type CastVoteResponse struct {
	Vote    *UserVote `json:"vote"`
	Message string    `json:"message,omitempty"`
}

type ResultsRoom struct {
	Results    []VoteResult `json:"results"`
	TotalVotes int          `json:"totalVotes"`
}

type VoteResultsResponse struct {
	Room ResultsRoom `json:"room"`
}

type MyVoteResponse struct {
	Vote *UserVote `json:"vote"`
}

type MyVotesResponse struct {
	Votes []UserVote `json:"votes"`
}

// Room is the full room document used outside the voting core (CLI display,
// join flow).
type Room struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Options            []string   `json:"options"`
	JoinCode           string     `json:"joinCode,omitempty"`
	IsActive           bool       `json:"isActive"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	Deadline           *time.Time `json:"deadline"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type RoomResponse struct {
	Room Room `json:"room"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
