package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

type FeedbackService struct {
	db *gorm.DB
}

var _ IFeedbackService = (*FeedbackService)(nil)

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{
		db: db,
	}
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest, userID *uuid.UUID) (*models.Feedback, error) {
	feedback := &models.Feedback{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Status:      "open",
	}

	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	return feedback, nil
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("feedback not found")
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &feedback, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, filters *models.FeedbackFilters) ([]*models.Feedback, error) {
	query := s.db.WithContext(ctx)

	if filters != nil {
		if filters.Type != "" {
			query = query.Where("type = ?", filters.Type)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.UserID != "" {
			if userUUID, err := uuid.Parse(filters.UserID); err == nil {
				query = query.Where("user_id = ?", userUUID)
			}
		}

		if filters.Limit > 0 {
			query = query.Limit(filters.Limit)
		} else {
			query = query.Limit(50) // Default limit
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}
	}

	query = query.Order("created_at DESC")

	var feedback []*models.Feedback
	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	return feedback, nil
}

func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	result := s.db.WithContext(ctx).Model(&models.Feedback{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update feedback status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("feedback not found")
	}

	return nil
}
