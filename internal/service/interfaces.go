package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IDirectoryService defines the interface for profile directory operations
type IDirectoryService interface {
	ListProfiles(ctx context.Context, excludeUserID uuid.UUID) ([]*models.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetProfilesByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	SearchProfiles(ctx context.Context, query string, selfID uuid.UUID) ([]*models.Profile, error)
	SearchBySkill(ctx context.Context, skill string, selfID uuid.UUID) ([]*models.Profile, error)
}

// IConnectionService defines the interface for connection request operations
type IConnectionService interface {
	Create(ctx context.Context, senderID, receiverID uuid.UUID, interestMessage string) (*models.ConnectionRequest, error)
	ListIncomingPending(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error)
	ListOutgoingPending(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error)
	ListAccepted(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error)
	Respond(ctx context.Context, selfID, requestID uuid.UUID, accept bool) (*models.ConnectionRequest, error)
	AreConnected(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// IMessageService defines the interface for chat message operations
type IMessageService interface {
	History(ctx context.Context, selfID, contactID uuid.UUID) ([]*models.Message, error)
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error)
}

// IFeedbackService defines the interface for feedback operations
type IFeedbackService interface {
	CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest, userID *uuid.UUID) (*models.Feedback, error)
	GetFeedback(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	ListFeedback(ctx context.Context, filters *models.FeedbackFilters) ([]*models.Feedback, error)
	UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) error
}

// EventPublisher delivers row-change events to a user's live-update channel.
// The websocket hub provides the production implementation backed by Redis
// pub/sub; tests use an in-process fake.
type EventPublisher interface {
	PublishToUser(ctx context.Context, userID uuid.UUID, event types.Event) error
}
