package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/indicae/backend/config"
	"github.com/indicae/backend/internal/database"
	"github.com/indicae/backend/internal/server"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	rdb, err := database.NewRedisClient(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to Redis")
	}

	// Avatar storage is optional; the server runs without it.
	s3cfg, err := config.NewS3Config(context.Background())
	if err != nil {
		logrus.WithError(err).Warn("avatar storage unavailable, continuing without it")
		s3cfg = nil
	} else if err := s3cfg.SetupBucketPolicy(context.Background()); err != nil {
		logrus.WithError(err).Warn("failed to apply avatar bucket policy")
	}

	srv := server.New(cfg, db, rdb, s3cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logrus.WithError(err).Fatal("server error")
		}
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server shutdown error")
	}
	logrus.Info("server stopped")
}
