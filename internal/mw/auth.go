package mw

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// userKey is the gin context key the authenticated user is stored under.
const userKey = "mw.user"

func bearerSecret(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	secret := strings.TrimSpace(header[len(prefix):])
	return secret, secret != ""
}

func resolveUser(c *gin.Context, s store.Store) (*model.User, error) {
	secret, ok := bearerSecret(c)
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	user, err := s.AuthenticateToken(c.Request.Context(), time.Now(), secret)
	if err != nil {
		return nil, err
	}
	s.TouchLastSeen(c.Request.Context(), user.ID, time.Now())
	return user, nil
}

// Auth requires a valid bearer token and stores the owning user in the
// request context.
func Auth(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, s)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token expired"})
			case errors.Is(err, store.ErrTokenNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			}
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the bearer token when one is present but lets
// anonymous requests through without a user in the context.
func OptionalAuth(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerSecret(c); !ok {
			c.Next()
			return
		}
		user, err := resolveUser(c, s)
		if err != nil {
			c.Next()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the context user holds an admin role.
// It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user placed in the context by Auth or OptionalAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
