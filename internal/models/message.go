package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat message between two users. Create-only: there
// is no edit or delete path anywhere in the API.
type Message struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SenderID   uuid.UUID `gorm:"type:varchar(36);not null;index:idx_msg_pair" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"type:varchar(36);not null;index:idx_msg_pair" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
