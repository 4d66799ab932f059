package integration

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicae/backend/internal/api"
	"github.com/indicae/backend/internal/client"
	"github.com/indicae/backend/internal/client/httpstore"
	"github.com/indicae/backend/internal/router"
	"github.com/indicae/backend/internal/service"
	"github.com/indicae/backend/internal/testhelpers"
	"github.com/indicae/backend/internal/ws"
)

// startBackend boots the full stack (Postgres, Redis, hub, HTTP API) against
// throwaway containers and returns the server's base URL.
func startBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	rdb := testhelpers.SetupTestRedis(t)

	hub := ws.NewHub(rdb)
	t.Cleanup(hub.Close)

	authService := service.NewAuthService(db, "integration-secret")
	directoryService := service.NewDirectoryService(db)
	connectionService := service.NewConnectionService(db, hub)
	messageService := service.NewMessageService(db, connectionService, hub)
	feedbackService := service.NewFeedbackService(db)

	engine := router.SetupRouter(router.Handlers{
		Auth:           api.NewAuthHandler(authService),
		Profile:        api.NewProfileHandler(directoryService, nil, authService),
		Connection:     api.NewConnectionHandler(connectionService, authService, nil),
		Message:        api.NewMessageHandler(messageService, authService, nil),
		Feedback:       api.NewFeedbackHandler(feedbackService, authService, nil),
		Hub:            hub,
		TokenValidator: authService,
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server.URL
}

func startSession(t *testing.T, baseURL, name, email string, notify client.Notifier) *client.Session {
	t.Helper()
	ctx := context.Background()

	token, err := httpstore.Register(ctx, baseURL, name, email, "password123")
	require.NoError(t, err)

	store := httpstore.New(baseURL, token)
	selfID, err := store.OwnUserID(ctx)
	require.NoError(t, err)

	session := client.NewSession(store, selfID, "", notify)
	sessionCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	require.NoError(t, session.Start(sessionCtx))
	t.Cleanup(session.Close)
	return session
}

func TestFullConnectionAndChatFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	baseURL := startBackend(t)

	var (
		noticeMu sync.Mutex
		notices  []string
	)
	notify := func(text string) {
		noticeMu.Lock()
		notices = append(notices, text)
		noticeMu.Unlock()
	}

	ana := startSession(t, baseURL, "Ana Souza", "ana@example.com", notify)
	bruno := startSession(t, baseURL, "Bruno Lima", "bruno@example.com", nil)

	// Bruno registered after Ana loaded her directory; reload so she can
	// resolve him.
	require.NoError(t, ana.Directory.LoadAll(context.Background()))
	directory := ana.Directory.All()
	require.Len(t, directory, 1)
	assert.Equal(t, "Bruno Lima", directory[0].Name)

	// Ana sends a connection request; Bruno's session picks it up live.
	require.NoError(t, ana.Ledger.SendRequest(context.Background(), bruno.SelfID, "Vi seu perfil e gostei"))

	var requestID string
	require.Eventually(t, func() bool {
		incoming := bruno.Ledger.IncomingPending()
		if len(incoming) != 1 {
			return false
		}
		requestID = incoming[0].ID
		return true
	}, 10*time.Second, 100*time.Millisecond, "receiver sees the request via the live channel")

	incoming := bruno.Ledger.IncomingPending()
	assert.Equal(t, "Ana Souza", incoming[0].Counterpart.Name)
	assert.Equal(t, "Vi seu perfil e gostei", incoming[0].InterestMessage)

	// Bruno accepts; Ana is notified and both ledgers converge.
	require.NoError(t, bruno.Ledger.Respond(context.Background(), requestID, true))

	require.Eventually(t, func() bool {
		noticeMu.Lock()
		defer noticeMu.Unlock()
		return len(notices) == 1 && strings.Contains(notices[0], "accepted your connection request")
	}, 10*time.Second, 100*time.Millisecond, "sender is notified of the acceptance")

	require.Eventually(t, func() bool {
		return len(ana.Ledger.Accepted()) == 1 && len(ana.Ledger.OutgoingPending()) == 0
	}, 10*time.Second, 100*time.Millisecond)
	require.Len(t, bruno.Ledger.Accepted(), 1)

	_, ok := bruno.Chats.ThreadFor(ana.SelfID)
	assert.True(t, ok, "accepting seeds an empty thread for the receiver")

	// Chat both ways; provisional entries reconcile against the live events.
	require.NoError(t, ana.Chats.Send(context.Background(), bruno.SelfID, "Oi Bruno!"))

	require.Eventually(t, func() bool {
		thread, ok := bruno.Chats.ThreadFor(ana.SelfID)
		return ok && len(thread.Messages) == 1 && thread.Messages[0].Text == "Oi Bruno!"
	}, 10*time.Second, 100*time.Millisecond)

	require.Eventually(t, func() bool {
		thread, ok := ana.Chats.ThreadFor(bruno.SelfID)
		return ok && len(thread.Messages) == 1 && !thread.Messages[0].Provisional
	}, 10*time.Second, 100*time.Millisecond, "sender's provisional is replaced by the authoritative row")

	require.NoError(t, bruno.Chats.Send(context.Background(), ana.SelfID, "Oi Ana!"))

	require.Eventually(t, func() bool {
		thread, ok := ana.Chats.ThreadFor(bruno.SelfID)
		return ok && len(thread.Messages) == 2 && thread.Messages[1].Text == "Oi Ana!"
	}, 10*time.Second, 100*time.Millisecond)

	// A fresh session rebuilds the same thread from history.
	store := httpstore.New(baseURL, loginToken(t, baseURL, "ana@example.com"))
	rejoined := client.NewSession(store, ana.SelfID, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rejoined.Start(ctx))
	defer rejoined.Close()

	thread, ok := rejoined.Chats.ThreadFor(bruno.SelfID)
	require.True(t, ok)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "Oi Bruno!", thread.Messages[0].Text)
	assert.Equal(t, "Oi Ana!", thread.Messages[1].Text)
}

func loginToken(t *testing.T, baseURL, email string) string {
	t.Helper()
	token, err := httpstore.Login(context.Background(), baseURL, email, "password123")
	require.NoError(t, err)
	return token
}
