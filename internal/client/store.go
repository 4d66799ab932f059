// Package client holds the session-side state of the app: the profile
// directory, the connection ledger, the per-contact chat threads, and the
// live-update listener that keeps them current. All remote access goes
// through the Store interface so the same core runs against the production
// API or an in-memory fake in tests.
package client

import (
	"context"
	"time"
)

// Request lifecycle states, mirroring the server table.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Live-update event types.
const (
	EventMessageCreated    = "message.created"
	EventConnectionUpdated = "connection.updated"
)

// Profile is a user's public directory record. Unknown marks a placeholder
// for an id that could not be resolved; the rest of the fields are zero in
// that case except Name.
type Profile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DOB        string   `json:"dob"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Education  string   `json:"education"`
	SoftSkills []string `json:"soft_skills"`
	HardSkills []string `json:"hard_skills"`
	AvatarURL  string   `json:"avatar_url"`
	Unknown    bool     `json:"-"`
}

// PlaceholderProfile stands in for a counterpart id the directory cannot
// resolve. Operations degrade to it instead of failing.
func PlaceholderProfile(id string) Profile {
	return Profile{ID: id, Name: "Unknown user", Unknown: true}
}

// Request is a connection request with its counterpart profile resolved
// relative to the session user.
type Request struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	ReceiverID      string    `json:"receiver_id"`
	Status          string    `json:"status"`
	InterestMessage string    `json:"interest_message"`
	CreatedAt       time.Time `json:"created_at"`
	Counterpart     Profile   `json:"user"`
}

// CounterpartID returns the other party of the request relative to selfID.
func (r *Request) CounterpartID(selfID string) string {
	if r.SenderID == selfID {
		return r.ReceiverID
	}
	return r.SenderID
}

// Message is one chat message. Provisional marks a locally synthesized entry
// shown before the backend confirms persistence; its ID is a temporary local
// id that never matches an authoritative one.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	ReceiverID  string    `json:"receiver_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Avatar      string    `json:"avatar,omitempty"`
	Provisional bool      `json:"-"`
}

// Thread is the ordered message history with one counterpart. Threads are
// derived state: they are rebuilt from accepted connections plus message
// history on each session start.
type Thread struct {
	ContactID string    `json:"contact_id"`
	Contact   Profile   `json:"contact"`
	Messages  []Message `json:"messages"`
}

// Event is one row-change notification from the live-update channel.
// Exactly one of Message or Request is set, matching Type.
type Event struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Request *Request `json:"request,omitempty"`
}

// Store is the remote data service contract. All calls are scoped to the
// authenticated session user on the server side; the client never passes its
// own id explicitly.
type Store interface {
	// ListProfiles returns every directory profile visible to the session.
	ListProfiles(ctx context.Context) ([]Profile, error)
	// GetProfiles resolves a batch of user ids in one call. Missing ids are
	// absent from the result map, not an error.
	GetProfiles(ctx context.Context, ids []string) (map[string]Profile, error)

	ListIncomingPending(ctx context.Context) ([]Request, error)
	ListOutgoingPending(ctx context.Context) ([]Request, error)
	ListAccepted(ctx context.Context) ([]Request, error)
	CreateRequest(ctx context.Context, receiverID, interestMessage string) (Request, error)
	RespondRequest(ctx context.Context, requestID string, accept bool) (Request, error)

	// History returns the thread with one contact ordered oldest first.
	History(ctx context.Context, contactID string) ([]Message, error)
	SendMessage(ctx context.Context, contactID, text string) (Message, error)

	// Subscribe opens the live-update channel. The returned channel closes
	// when the context is cancelled or the connection drops; events missed
	// while disconnected are not replayed.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Notifier surfaces user-visible notices (toasts in the original UI).
// A nil Notifier is valid and drops notices.
type Notifier func(text string)

func (n Notifier) notify(text string) {
	if n != nil {
		n(text)
	}
}
