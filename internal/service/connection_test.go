package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

func TestCreateConnectionRequest(t *testing.T) {
	db := setupTestDB(t)
	publisher := &fakePublisher{}
	svc := NewConnectionService(db, publisher)

	sender := seedUser(t, db, "Ana", "Souza")
	receiver := seedUser(t, db, "Bruno", "Lima")

	request, err := svc.Create(context.Background(), sender, receiver, "Vi seu perfil e gostei")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, request.Status)
	assert.Equal(t, sender, request.SenderID)
	assert.Equal(t, receiver, request.ReceiverID)

	events := publisher.eventsFor(receiver)
	require.Len(t, events, 1, "the receiver is notified of the new request")
	assert.Equal(t, types.EventConnectionUpdated, events[0].Type)
	require.NotNil(t, events[0].Request)
	assert.Equal(t, request.ID, events[0].Request.ID)
	assert.Empty(t, publisher.eventsFor(sender))
}

func TestCreateRejectsSelfAndDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewConnectionService(db, nil)

	sender := seedUser(t, db, "Ana", "Souza")
	receiver := seedUser(t, db, "Bruno", "Lima")

	_, err := svc.Create(context.Background(), sender, sender, "me")
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = svc.Create(context.Background(), sender, receiver, "first")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), sender, receiver, "second")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// The reverse direction is a distinct pair and stays allowed.
	_, err = svc.Create(context.Background(), receiver, sender, "back at you")
	assert.NoError(t, err)
}

func TestCreateRequiresExistingReceiver(t *testing.T) {
	db := setupTestDB(t)
	svc := NewConnectionService(db, nil)

	sender := seedUser(t, db, "Ana", "Souza")

	_, err := svc.Create(context.Background(), sender, uuid.New(), "hello?")
	assert.Error(t, err)
}

func TestRespondOnlyReceiverMayDecide(t *testing.T) {
	db := setupTestDB(t)
	publisher := &fakePublisher{}
	svc := NewConnectionService(db, publisher)

	sender := seedUser(t, db, "Ana", "Souza")
	receiver := seedUser(t, db, "Bruno", "Lima")
	stranger := seedUser(t, db, "Carla", "Mendes")

	request, err := svc.Create(context.Background(), sender, receiver, "oi")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), sender, request.ID, true)
	assert.ErrorIs(t, err, ErrRequestNotFound, "the sender cannot accept its own request")

	_, err = svc.Respond(context.Background(), stranger, request.ID, true)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	updated, err := svc.Respond(context.Background(), receiver, request.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, updated.Status)

	events := publisher.eventsFor(sender)
	require.Len(t, events, 1, "the sender learns of the decision")
	assert.Equal(t, models.ConnectionAccepted, events[0].Request.Status)

	connected, err := svc.AreConnected(context.Background(), sender, receiver)
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestRespondIsSingleShot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewConnectionService(db, nil)

	sender := seedUser(t, db, "Ana", "Souza")
	receiver := seedUser(t, db, "Bruno", "Lima")

	request, err := svc.Create(context.Background(), sender, receiver, "oi")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), receiver, request.ID, false)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), receiver, request.ID, true)
	assert.ErrorIs(t, err, ErrRequestNotFound, "a decided request cannot be decided again")
}

func TestRejectedPairMayRetry(t *testing.T) {
	db := setupTestDB(t)
	svc := NewConnectionService(db, nil)

	sender := seedUser(t, db, "Ana", "Souza")
	receiver := seedUser(t, db, "Bruno", "Lima")

	request, err := svc.Create(context.Background(), sender, receiver, "first try")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), receiver, request.ID, false)
	require.NoError(t, err)

	// Only pending requests count toward the duplicate check.
	_, err = svc.Create(context.Background(), sender, receiver, "second try")
	assert.NoError(t, err)
}

func TestListViewsAreScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewConnectionService(db, nil)

	self := seedUser(t, db, "Ana", "Souza")
	peer := seedUser(t, db, "Bruno", "Lima")
	third := seedUser(t, db, "Carla", "Mendes")

	incoming, err := svc.Create(context.Background(), peer, self, "to self")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), self, third, "from self")
	require.NoError(t, err)
	// Unrelated traffic between peer and third must never surface for self.
	unrelated, err := svc.Create(context.Background(), third, peer, "unrelated")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), peer, unrelated.ID, true)
	require.NoError(t, err)

	in, err := svc.ListIncomingPending(context.Background(), self)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, incoming.ID, in[0].ID)

	out, err := svc.ListOutgoingPending(context.Background(), self)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, third, out[0].ReceiverID)

	accepted, err := svc.ListAccepted(context.Background(), self)
	require.NoError(t, err)
	assert.Empty(t, accepted)

	_, err = svc.Respond(context.Background(), self, incoming.ID, true)
	require.NoError(t, err)

	accepted, err = svc.ListAccepted(context.Background(), self)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, incoming.ID, accepted[0].ID)

	in, err = svc.ListIncomingPending(context.Background(), self)
	require.NoError(t, err)
	assert.Empty(t, in, "an accepted request leaves the pending view")
}
