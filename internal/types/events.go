package types

import (
	"github.com/indicae/backend/internal/models"
)

// Live-update event types pushed over the websocket channel.
const (
	EventMessageCreated    = "message.created"
	EventConnectionUpdated = "connection.updated"
)

// Event is the envelope delivered on a user's live-update channel. Exactly one
// of Message or Request is set, matching Type.
type Event struct {
	Type    string                    `json:"type"`
	Message *models.Message           `json:"message,omitempty"`
	Request *models.ConnectionRequest `json:"request,omitempty"`
}
