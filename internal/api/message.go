package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/types"
)

type MessageHandler struct {
	messageService service.IMessageService
	authService    service.IAuthService
	rateLimiter    *middleware.RateLimiter
}

func NewMessageHandler(messageService service.IMessageService, authService service.IAuthService, rateLimiter *middleware.RateLimiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		authService:    authService,
		rateLimiter:    rateLimiter,
	}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	messages := router.Group("/messages")
	messages.Use(middleware.AuthMiddleware(h.authService))
	{
		messages.GET("/:contactId", h.History)
		if h.rateLimiter != nil {
			messages.POST("", h.rateLimiter.RateLimitMiddleware(), h.Send)
		} else {
			messages.POST("", h.Send)
		}
	}
}

// History returns the full thread with one contact, oldest first.
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	messages, err := h.messageService.History(c.Request.Context(), userID, contactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotConnected) {
			c.JSON(http.StatusForbidden, gin.H{"error": "users are not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, message)
}
