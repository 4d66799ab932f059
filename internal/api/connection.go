package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/types"
)

type ConnectionHandler struct {
	connectionService service.IConnectionService
	authService       service.IAuthService
	rateLimiter       *middleware.RateLimiter
}

func NewConnectionHandler(connectionService service.IConnectionService, authService service.IAuthService, rateLimiter *middleware.RateLimiter) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		authService:       authService,
		rateLimiter:       rateLimiter,
	}
}

func (h *ConnectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	connections := router.Group("/connections")
	connections.Use(middleware.AuthMiddleware(h.authService))
	{
		connections.GET("/incoming", h.ListIncoming)
		connections.GET("/outgoing", h.ListOutgoing)
		connections.GET("/accepted", h.ListAccepted)
		connections.PUT("/:id", h.Respond)
		if h.rateLimiter != nil {
			connections.POST("", h.rateLimiter.RateLimitMiddleware(), h.Create)
		} else {
			connections.POST("", h.Create)
		}
	}
}

func (h *ConnectionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.connectionService.Create(c.Request.Context(), userID, req.ReceiverID, req.InterestMessage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfConnection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a connection request to yourself"})
		case errors.Is(err, service.ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"error": "a pending request to this user already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create connection request"})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *ConnectionHandler) ListIncoming(c *gin.Context) {
	h.list(c, h.connectionService.ListIncomingPending)
}

func (h *ConnectionHandler) ListOutgoing(c *gin.Context) {
	h.list(c, h.connectionService.ListOutgoingPending)
}

func (h *ConnectionHandler) ListAccepted(c *gin.Context) {
	h.list(c, h.connectionService.ListAccepted)
}

func (h *ConnectionHandler) list(c *gin.Context, fn func(ctx context.Context, selfID uuid.UUID) ([]*models.ConnectionRequest, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := fn(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list connection requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *ConnectionHandler) Respond(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req types.RespondConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.connectionService.Respond(c.Request.Context(), userID, requestID, req.Action == "accept")
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "connection request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to respond to connection request"})
		return
	}

	c.JSON(http.StatusOK, request)
}
