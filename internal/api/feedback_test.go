package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicae/backend/internal/types"
)

func TestFeedbackCreateAnonymous(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/feedback", "", gin.H{
		"type":        "bug",
		"title":       "Broken avatar upload",
		"description": "Uploading a PNG over 2MB returns a blank error.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.UserID)
	assert.Equal(t, "open", resp.Status)
}

func TestFeedbackCreateAttachesAuthenticatedUser(t *testing.T) {
	router := setupAPI(t)
	token := registerUser(t, router, "Ana Clara", "ana@example.com")
	userID := ownUserID(t, router, token)

	w := doJSON(t, router, http.MethodPost, "/api/v1/feedback", token, gin.H{
		"type":        "feature",
		"title":       "Dark mode",
		"description": "Please add a dark theme for the chat screen.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.UserID)
	assert.Equal(t, userID, resp.UserID.String())
}

func TestFeedbackAdminEndpointsRejectNonAdmins(t *testing.T) {
	router := setupAPI(t)
	token := registerUser(t, router, "Bruno Lima", "bruno@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/v1/feedback", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/feedback", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/feedback/not-an-id/status", token, gin.H{
		"status": "resolved",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedbackAdminWorkflow(t *testing.T) {
	router := setupAPI(t)
	userToken := registerUser(t, router, "Ana Clara", "ana@example.com")
	adminToken := registerUser(t, router, "Site Admin", "admin@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/feedback", userToken, gin.H{
		"type":        "bug",
		"title":       "Stuck request",
		"description": "A rejected request still shows as pending.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created types.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, "/api/v1/feedback", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list []types.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.NotNil(t, list[0].UserID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/feedback/"+created.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPut, "/api/v1/feedback/"+created.ID.String()+"/status", adminToken, gin.H{
		"status":      "resolved",
		"admin_notes": "Fixed in the ledger refresh path.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/feedback/"+created.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var updated types.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "resolved", updated.Status)
	assert.Equal(t, "Fixed in the ledger refresh path.", updated.AdminNotes)
}
