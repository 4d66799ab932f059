package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

var (
	ErrSelfConnection   = errors.New("cannot send a connection request to yourself")
	ErrDuplicateRequest = errors.New("a pending request to this user already exists")
	ErrRequestNotFound  = errors.New("connection request not found or not pending for this receiver")
)

// ConnectionService owns the connection_requests table. The client performs
// its own advisory checks, but the invariants live here: one meaningful
// pending request per (sender, receiver) pair, and only the receiver may
// change a request's status.
type ConnectionService struct {
	db     *gorm.DB
	events EventPublisher
}

var _ IConnectionService = (*ConnectionService)(nil)

func NewConnectionService(db *gorm.DB, events EventPublisher) *ConnectionService {
	return &ConnectionService{
		db:     db,
		events: events,
	}
}

// Create inserts a new pending request and notifies the receiver.
func (s *ConnectionService) Create(ctx context.Context, senderID, receiverID uuid.UUID, interestMessage string) (*models.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfConnection
	}

	// Receiver must exist in the directory.
	var receiver models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", receiverID).First(&receiver).Error; err != nil {
		return nil, fmt.Errorf("receiver not found: %w", err)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.ConnectionRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.ConnectionPending).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateRequest
	}

	request := models.ConnectionRequest{
		ID:              uuid.New(),
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Status:          models.ConnectionPending,
		InterestMessage: interestMessage,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}

	s.publish(ctx, &request, receiverID)

	return &request, nil
}

// ListIncomingPending returns pending requests addressed to selfID.
func (s *ConnectionService) ListIncomingPending(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error) {
	return s.list(ctx, s.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", selfID, models.ConnectionPending))
}

// ListOutgoingPending returns pending requests sent by selfID.
func (s *ConnectionService) ListOutgoingPending(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error) {
	return s.list(ctx, s.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", selfID, models.ConnectionPending))
}

// ListAccepted returns accepted requests touching selfID in either direction.
func (s *ConnectionService) ListAccepted(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error) {
	return s.list(ctx, s.db.WithContext(ctx).
		Where("status = ?", models.ConnectionAccepted).
		Where(s.db.Where("sender_id = ?", selfID).Or("receiver_id = ?", selfID)))
}

func (s *ConnectionService) list(ctx context.Context, query *gorm.DB) ([]*models.ConnectionRequest, error) {
	var requests []models.ConnectionRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	result := make([]*models.ConnectionRequest, len(requests))
	for i := range requests {
		result[i] = &requests[i]
	}
	return result, nil
}

// Respond applies the receiver's decision. The update is filtered on
// receiver_id and the pending status, so a sender (or anyone else) mutating
// the row is a no-op reported as not found.
func (s *ConnectionService) Respond(ctx context.Context, selfID, requestID uuid.UUID, accept bool) (*models.ConnectionRequest, error) {
	status := models.ConnectionRejected
	if accept {
		status = models.ConnectionAccepted
	}

	result := s.db.WithContext(ctx).Model(&models.ConnectionRequest{}).
		Where("id = ? AND receiver_id = ? AND status = ?", requestID, selfID, models.ConnectionPending).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRequestNotFound
	}

	var request models.ConnectionRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}

	// The sender learns of the decision through the live channel.
	s.publish(ctx, &request, request.SenderID)

	return &request, nil
}

// AreConnected reports whether an accepted request pairs the two users in
// either direction.
func (s *ConnectionService) AreConnected(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ConnectionRequest{}).
		Where("status = ?", models.ConnectionAccepted).
		Where(
			s.db.Where("sender_id = ? AND receiver_id = ?", a, b).
				Or("sender_id = ? AND receiver_id = ?", b, a),
		).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ConnectionService) publish(ctx context.Context, request *models.ConnectionRequest, to uuid.UUID) {
	if s.events == nil {
		return
	}
	event := types.Event{
		Type:    types.EventConnectionUpdated,
		Request: request,
	}
	if err := s.events.PublishToUser(ctx, to, event); err != nil {
		logrus.WithError(err).WithField("user_id", to).Warn("failed to publish connection event")
	}
}
