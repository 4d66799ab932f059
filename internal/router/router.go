package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indicae/backend/internal/api"
	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/ws"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *api.AuthHandler
	Profile    *api.ProfileHandler
	Connection *api.ConnectionHandler
	Message    *api.MessageHandler
	Feedback   *api.FeedbackHandler

	Hub            *ws.Hub
	TokenValidator middleware.TokenValidator
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		h.Auth.RegisterRoutes(v1)
		h.Profile.RegisterRoutes(v1)
		h.Connection.RegisterRoutes(v1)
		h.Message.RegisterRoutes(v1)
		h.Feedback.RegisterRoutes(v1)
	}

	// Live-update channel; authenticates inside the handler since browser
	// websocket clients cannot send an Authorization header.
	if h.Hub != nil {
		router.GET("/api/v1/ws", func(c *gin.Context) {
			ws.ServeWS(h.Hub, h.TokenValidator, c)
		})
	}

	return router
}
