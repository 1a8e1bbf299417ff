package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerResident(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, "POST", "/api/auth/register", "", gin.H{
		"name":       "Subscriber",
		"residentId": "S-303",
		"password":   "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestSubscriptionLifecycle(t *testing.T) {
	router := setupAuthAPI(t)
	token := registerResident(t, router)

	sub := gin.H{
		"endpoint": "https://push.example/s-303",
		"p256dh":   "key-material",
		"auth":     "auth-material",
	}

	t.Run("Empty body is refused", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/subscriptions", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"endpoint, p256dh and auth are required"}`, w.Body.String())
	})

	t.Run("Save and read back", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/subscriptions", token, sub)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "GET", "/api/subscriptions?endpoint=https://push.example/s-303", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Other residents cannot see it", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/register", "", gin.H{
			"name":       "Neighbour",
			"residentId": "S-404",
			"password":   "hunter22",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		w = doJSON(router, "GET", "/api/subscriptions?endpoint=https://push.example/s-303", resp.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/subscriptions", token, gin.H{"endpoint": "https://push.example/s-303"})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(router, "GET", "/api/subscriptions?endpoint=https://push.example/s-303", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	router := setupAuthAPI(t)
	w := doJSON(router, "GET", "/api/vapid_public_key", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
