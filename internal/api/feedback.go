package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/types"
)

type FeedbackHandler struct {
	feedbackService service.IFeedbackService
	authService     service.IAuthService
	adminEmails     map[string]bool
}

func NewFeedbackHandler(feedbackService service.IFeedbackService, authService service.IAuthService, adminEmails []string) *FeedbackHandler {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(email)] = true
	}
	return &FeedbackHandler{
		feedbackService: feedbackService,
		authService:     authService,
		adminEmails:     admins,
	}
}

func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	feedback := router.Group("/feedback")
	{
		// Submissions may be anonymous; the user is attached when a valid
		// token accompanies the request.
		feedback.POST("", middleware.OptionalAuthMiddleware(h.authService), h.CreateFeedback)

		admin := feedback.Group("")
		admin.Use(middleware.AuthMiddleware(h.authService))
		{
			admin.GET("", h.ListFeedback)
			admin.GET("/:id", h.GetFeedback)
			admin.PUT("/:id/status", h.UpdateStatus)
		}
	}
}

// CreateFeedback creates a new feedback submission
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req types.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Feedback may be anonymous; attach the user only when authenticated.
	var userID *uuid.UUID
	if v, exists := c.Get("user_id"); exists {
		if uid, ok := v.(uuid.UUID); ok {
			userID = &uid
		}
	}

	feedback, err := h.feedbackService.CreateFeedback(c.Request.Context(), &req, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create feedback"})
		return
	}

	c.JSON(http.StatusCreated, h.feedbackToResponse(feedback))
}

// ListFeedback lists all feedback (admin only)
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	filters := &models.FeedbackFilters{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		UserID: c.Query("user_id"),
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if offsetParam := c.Query("offset"); offsetParam != "" {
		if offset, err := strconv.Atoi(offsetParam); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	feedbackList, err := h.feedbackService.ListFeedback(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}

	responses := make([]types.FeedbackResponse, len(feedbackList))
	for i, feedback := range feedbackList {
		responses[i] = h.feedbackToResponse(feedback)
	}

	c.JSON(http.StatusOK, responses)
}

// GetFeedback gets a specific feedback item (admin only)
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	feedback, err := h.feedbackService.GetFeedback(c.Request.Context(), feedbackID)
	if err != nil {
		if err.Error() == "feedback not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get feedback"})
		return
	}

	c.JSON(http.StatusOK, h.feedbackToResponse(feedback))
}

// UpdateStatus updates the status of a feedback item (admin only)
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	if !h.isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	var req types.UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.feedbackService.UpdateFeedbackStatus(c.Request.Context(), feedbackID, req.Status, req.AdminNotes)
	if err != nil {
		if err.Error() == "feedback not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update feedback status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "feedback status updated successfully"})
}

func (h *FeedbackHandler) isAdmin(c *gin.Context) bool {
	email, exists := c.Get("email")
	if !exists {
		return false
	}
	s, ok := email.(string)
	return ok && h.adminEmails[strings.ToLower(s)]
}

func (h *FeedbackHandler) feedbackToResponse(feedback *models.Feedback) types.FeedbackResponse {
	return types.FeedbackResponse{
		ID:          feedback.ID,
		Type:        feedback.Type,
		Title:       feedback.Title,
		Description: feedback.Description,
		Status:      feedback.Status,
		AdminNotes:  feedback.AdminNotes,
		CreatedAt:   feedback.CreatedAt,
		UserID:      feedback.UserID,
	}
}
