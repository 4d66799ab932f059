package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	DOB      string `json:"dob"`
	City     string `json:"city"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Pointer fields distinguish "leave unchanged" from "set to empty".
type UpdateProfileRequest struct {
	Name       string    `json:"name"`
	DOB        *string   `json:"dob"`
	City       *string   `json:"city"`
	State      *string   `json:"state"`
	Education  *string   `json:"education"`
	SoftSkills *[]string `json:"soft_skills"`
	HardSkills *[]string `json:"hard_skills"`
	AvatarURL  *string   `json:"avatar_url"`
}

// CreateConnectionRequest represents the request body for sending a
// connection request
type CreateConnectionRequest struct {
	ReceiverID      uuid.UUID `json:"receiver_id" binding:"required"`
	InterestMessage string    `json:"interest_message"`
}

// RespondConnectionRequest represents the receiver's decision on a pending
// connection request
type RespondConnectionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// SendMessageRequest represents the request body for sending a chat message
type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
}

// CreateFeedbackRequest represents the request body for submitting feedback
type CreateFeedbackRequest struct {
	Type        string `json:"type" binding:"required,oneof=bug feature general"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// UpdateFeedbackStatusRequest represents the admin request to move feedback
// through its workflow
type UpdateFeedbackStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	AdminNotes string `json:"admin_notes"`
}

// FeedbackResponse is the API shape of a feedback row
type FeedbackResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
}
