package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/indicae/backend/config"
	"github.com/indicae/backend/internal/api"
	"github.com/indicae/backend/internal/middleware"
	"github.com/indicae/backend/internal/router"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/ws"
)

// Server represents the HTTP server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	hub    *ws.Hub
}

// New wires services, handlers and the live-update hub into a ready server.
// The S3 config may be nil; avatar uploads then return 503 but everything
// else works, which keeps local development free of AWS credentials.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, s3cfg *config.S3Config) *Server {
	hub := ws.NewHub(rdb)

	authService := service.NewAuthService(db, cfg.JWTSecret)
	directoryService := service.NewDirectoryService(db)
	connectionService := service.NewConnectionService(db, hub)
	messageService := service.NewMessageService(db, connectionService, hub)
	feedbackService := service.NewFeedbackService(db)

	var avatarService *service.AvatarService
	if s3cfg != nil {
		avatarService = service.NewAvatarService(s3cfg)
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:           api.NewAuthHandler(authService),
		Profile:        api.NewProfileHandler(directoryService, avatarService, authService),
		Connection:     api.NewConnectionHandler(connectionService, authService, middleware.NewConnectionRequestRateLimiter(rdb)),
		Message:        api.NewMessageHandler(messageService, authService, middleware.NewMessageSendRateLimiter(rdb)),
		Feedback:       api.NewFeedbackHandler(feedbackService, authService, cfg.AdminEmails),
		Hub:            hub,
		TokenValidator: authService,
	})

	return &Server{
		engine: engine,
		hub:    hub,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	logrus.WithField("addr", s.http.Addr).Info("starting server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and the live-update hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}
