package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVAPIDPublicKey(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(http.MethodGet, "/api/vapid_public_key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key": "test-public-key"}`, w.Body.String())
}

func TestSubscriptionEndpoints(t *testing.T) {
	e := newTestEnv(t)
	endpoint := "https://push.example.com/sub/abc123"

	t.Run("registration requires a token", func(t *testing.T) {
		w := e.request(http.MethodPut, "/api/subscriptions", "", gin.H{
			"endpoint": endpoint,
			"p256dh":   "p256dh-key",
			"auth":     "auth-secret",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("register", func(t *testing.T) {
		w := e.request(http.MethodPut, "/api/subscriptions", e.residentToken, gin.H{
			"endpoint": endpoint,
			"p256dh":   "p256dh-key",
			"auth":     "auth-secret",
		})
		assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	})

	t.Run("registering again refreshes in place", func(t *testing.T) {
		w := e.request(http.MethodPut, "/api/subscriptions", e.residentToken, gin.H{
			"endpoint": endpoint,
			"p256dh":   "rotated-key",
			"auth":     "rotated-secret",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		w = e.request(http.MethodGet, "/api/subscriptions", e.residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Endpoints []string `json:"endpoints"`
		}
		e.decode(w, &resp)
		assert.Equal(t, []string{endpoint}, resp.Endpoints)
	})

	t.Run("subscriptions are scoped to their user", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/subscriptions", e.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Endpoints []string `json:"endpoints"`
		}
		e.decode(w, &resp)
		assert.Empty(t, resp.Endpoints)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		w := e.request(http.MethodDelete, "/api/subscriptions", e.residentToken, gin.H{
			"endpoint": endpoint,
		})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.request(http.MethodGet, "/api/subscriptions", e.residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Endpoints []string `json:"endpoints"`
		}
		e.decode(w, &resp)
		assert.Empty(t, resp.Endpoints)
	})
}
