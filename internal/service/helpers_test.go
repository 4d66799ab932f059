package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/indicae/backend/internal/database"
	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, firstName, lastName string) uuid.UUID {
	t.Helper()

	user := models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s.%s.%s@example.com", strings.ToLower(firstName), strings.ToLower(lastName), uuid.NewString()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{
		ID:        uuid.New(),
		UserID:    user.ID,
		FirstName: firstName,
		LastName:  lastName,
		City:      "São Paulo",
	}
	require.NoError(t, db.Create(&profile).Error)
	return user.ID
}

type publishedEvent struct {
	userID uuid.UUID
	event  types.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishToUser(ctx context.Context, userID uuid.UUID, event types.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{userID: userID, event: event})
	return nil
}

func (f *fakePublisher) eventsFor(userID uuid.UUID) []types.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Event
	for _, e := range f.events {
		if e.userID == userID {
			out = append(out, e.event)
		}
	}
	return out
}
