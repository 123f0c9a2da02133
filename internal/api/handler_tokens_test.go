package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotify-backend/internal/store"
)

func TestTokenLifecycle(t *testing.T) {
	e := newTestEnv(t)
	tokensURL := "/api/admin/users/" + e.resident.UUID + "/tokens"

	var issued store.IssuedToken

	t.Run("issue with the default lifetime", func(t *testing.T) {
		w := e.request(http.MethodPost, tokensURL, e.adminToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		e.decode(w, &issued)
		assert.Len(t, issued.Token, 64)
		assert.Equal(t, issued.Token[:8], issued.Prefix)
		assert.WithinDuration(t, time.Now().Add(15*24*time.Hour), issued.ExpiresAt, time.Minute)
	})

	t.Run("issue with an explicit lifetime", func(t *testing.T) {
		w := e.request(http.MethodPost, tokensURL, e.adminToken, gin.H{"days": 30})
		require.Equal(t, http.StatusCreated, w.Code)

		var long store.IssuedToken
		e.decode(w, &long)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), long.ExpiresAt, time.Minute)
	})

	t.Run("negative lifetime is rejected", func(t *testing.T) {
		w := e.request(http.MethodPost, tokensURL, e.adminToken, gin.H{"days": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("the fresh token authenticates its user", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/me", issued.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var me UserResponse
		e.decode(w, &me)
		assert.Equal(t, "asha", me.Username)
	})

	t.Run("listing shows metadata, never the secret", func(t *testing.T) {
		w := e.request(http.MethodGet, tokensURL, e.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var tokens []store.TokenView
		e.decode(w, &tokens)
		require.Len(t, tokens, 3)
		assert.NotContains(t, w.Body.String(), issued.Token)

		var used *store.TokenView
		for i := range tokens {
			if tokens[i].UUID == issued.UUID {
				used = &tokens[i]
			}
		}
		require.NotNil(t, used)
		assert.NotNil(t, used.LastUsedAt, "authenticating records last use")
	})

	t.Run("revocation cuts access", func(t *testing.T) {
		w := e.request(http.MethodDelete, "/api/admin/tokens/"+issued.UUID, e.adminToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.request(http.MethodGet, "/api/me", issued.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = e.request(http.MethodDelete, "/api/admin/tokens/"+issued.UUID, e.adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
