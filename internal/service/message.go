package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

var ErrNotConnected = errors.New("users are not connected")

// MessageService owns the messages table. Rows are immutable once created;
// there is no edit or delete path.
type MessageService struct {
	db          *gorm.DB
	connections IConnectionService
	events      EventPublisher
}

var _ IMessageService = (*MessageService)(nil)

func NewMessageService(db *gorm.DB, connections IConnectionService, events EventPublisher) *MessageService {
	return &MessageService{
		db:          db,
		connections: connections,
		events:      events,
	}
}

// History returns the full thread between two users ordered oldest first.
// Equal timestamps fall back to id order so the sequence is stable across
// reloads.
func (s *MessageService) History(ctx context.Context, selfID, contactID uuid.UUID) ([]*models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where(
			s.db.Where("sender_id = ? AND receiver_id = ?", selfID, contactID).
				Or("sender_id = ? AND receiver_id = ?", contactID, selfID),
		).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	result := make([]*models.Message, len(messages))
	for i := range messages {
		result[i] = &messages[i]
	}
	return result, nil
}

// Send persists a message and pushes it to both participants' live channels.
// Messaging requires an accepted connection between the two users.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	connected, err := s.connections.AreConnected(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, ErrNotConnected
	}

	message := models.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}

	if s.events != nil {
		event := types.Event{
			Type:    types.EventMessageCreated,
			Message: &message,
		}
		// Both parties receive the authoritative row; the sender uses it to
		// reconcile its provisional copy.
		for _, userID := range []uuid.UUID{senderID, receiverID} {
			if err := s.events.PublishToUser(ctx, userID, event); err != nil {
				logrus.WithError(err).WithField("user_id", userID).Warn("failed to publish message event")
			}
		}
	}

	return &message, nil
}
