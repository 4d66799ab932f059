package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/types"
)

// maxAvatarSize bounds avatar uploads to 5 MiB.
const maxAvatarSize = 5 << 20

type ProfileHandler struct {
	directoryService service.IDirectoryService
	avatarService    *service.AvatarService
	authService      service.IAuthService
}

func NewProfileHandler(directoryService service.IDirectoryService, avatarService *service.AvatarService, authService service.IAuthService) *ProfileHandler {
	return &ProfileHandler{
		directoryService: directoryService,
		avatarService:    avatarService,
		authService:      authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/profiles")
	profiles.Use(middleware.AuthMiddleware(h.authService))
	{
		profiles.GET("", h.ListProfiles)
		profiles.GET("/me", h.GetOwnProfile)
		profiles.PUT("/me", h.UpdateProfile)
		profiles.POST("/me/avatar", h.UploadAvatar)
		profiles.GET("/search", h.SearchProfiles)
		profiles.GET("/:id", h.GetProfile)
		profiles.POST("/lookup", h.LookupProfiles)
	}
}

// ListProfiles returns the full directory, excluding the caller. The client
// replaces its cached set wholesale with this response.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profiles, err := h.directoryService.ListProfiles(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list profiles"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.directoryService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}

	profile, err := h.directoryService.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// LookupProfiles resolves a batch of user ids in one call. The connection
// ledger uses it to map counterpart profiles without N+1 requests.
func (h *ProfileHandler) LookupProfiles(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req struct {
		UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profiles, err := h.directoryService.GetProfilesByUserIDs(c.Request.Context(), req.UserIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up profiles"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.directoryService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SearchProfiles filters the directory by name (?q=) or by skill (?skill=).
func (h *ProfileHandler) SearchProfiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if skill := c.Query("skill"); skill != "" {
		profiles, err := h.directoryService.SearchBySkill(c.Request.Context(), skill, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search profiles"})
			return
		}
		c.JSON(http.StatusOK, profiles)
		return
	}

	profiles, err := h.directoryService.SearchProfiles(c.Request.Context(), c.Query("q"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search profiles"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.avatarService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read avatar"})
		return
	}
	if len(data) > maxAvatarSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "avatar exceeds size limit"})
		return
	}

	url, err := h.avatarService.UploadAvatar(c.Request.Context(), userID, data, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store avatar"})
		return
	}

	profile, err := h.directoryService.UpdateProfile(c.Request.Context(), userID, &types.UpdateProfileRequest{AvatarURL: &url})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
