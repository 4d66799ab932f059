package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

func connectUsers(t *testing.T, svc *ConnectionService, a, b uuid.UUID) {
	t.Helper()
	request, err := svc.Create(context.Background(), a, b, "")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), b, request.ID, true)
	require.NoError(t, err)
}

func TestSendRequiresAcceptedConnection(t *testing.T) {
	db := setupTestDB(t)
	connections := NewConnectionService(db, nil)
	svc := NewMessageService(db, connections, nil)

	ana := seedUser(t, db, "Ana", "Souza")
	bruno := seedUser(t, db, "Bruno", "Lima")

	_, err := svc.Send(context.Background(), ana, bruno, "oi")
	assert.ErrorIs(t, err, ErrNotConnected)

	connectUsers(t, connections, ana, bruno)

	message, err := svc.Send(context.Background(), ana, bruno, "oi")
	require.NoError(t, err)
	assert.Equal(t, "oi", message.Content)
	assert.NotEqual(t, uuid.Nil, message.ID)
}

func TestSendPublishesToBothParticipants(t *testing.T) {
	db := setupTestDB(t)
	publisher := &fakePublisher{}
	connections := NewConnectionService(db, nil)
	svc := NewMessageService(db, connections, publisher)

	ana := seedUser(t, db, "Ana", "Souza")
	bruno := seedUser(t, db, "Bruno", "Lima")
	connectUsers(t, connections, ana, bruno)

	message, err := svc.Send(context.Background(), ana, bruno, "oi")
	require.NoError(t, err)

	for _, userID := range []uuid.UUID{ana, bruno} {
		events := publisher.eventsFor(userID)
		require.Len(t, events, 1)
		assert.Equal(t, types.EventMessageCreated, events[0].Type)
		require.NotNil(t, events[0].Message)
		assert.Equal(t, message.ID, events[0].Message.ID)
	}
}

func TestHistoryOrderingAndScope(t *testing.T) {
	db := setupTestDB(t)
	connections := NewConnectionService(db, nil)
	svc := NewMessageService(db, connections, nil)

	ana := seedUser(t, db, "Ana", "Souza")
	bruno := seedUser(t, db, "Bruno", "Lima")
	carla := seedUser(t, db, "Carla", "Mendes")
	connectUsers(t, connections, ana, bruno)
	connectUsers(t, connections, ana, carla)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rows := []models.Message{
		{ID: uuid.New(), SenderID: ana, ReceiverID: bruno, Content: "third", CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), SenderID: bruno, ReceiverID: ana, Content: "first", CreatedAt: base},
		{ID: uuid.New(), SenderID: ana, ReceiverID: bruno, Content: "second", CreatedAt: base.Add(time.Minute)},
		// A different thread of ana's; must not leak into the bruno thread.
		{ID: uuid.New(), SenderID: ana, ReceiverID: carla, Content: "other thread", CreatedAt: base},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	history, err := svc.History(context.Background(), ana, bruno)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)
}
