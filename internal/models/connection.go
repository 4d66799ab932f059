package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection request lifecycle states. Requests are never deleted; rejected
// rows stay in the table as a record of the decision.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// ConnectionRequest is a directional invitation from sender to receiver.
// Status may only be changed by the receiver, enforced in the service layer
// by filtering the update on receiver_id.
type ConnectionRequest struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SenderID        uuid.UUID `gorm:"type:varchar(36);not null;index:idx_conn_pair" json:"sender_id"`
	ReceiverID      uuid.UUID `gorm:"type:varchar(36);not null;index:idx_conn_pair" json:"receiver_id"`
	Status          string    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	InterestMessage string    `gorm:"type:text" json:"interest_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ConnectionRequest) TableName() string {
	return "connection_requests"
}

// CounterpartID returns the other party of the request relative to selfID.
func (r *ConnectionRequest) CounterpartID(selfID uuid.UUID) uuid.UUID {
	if r.SenderID == selfID {
		return r.ReceiverID
	}
	return r.SenderID
}
