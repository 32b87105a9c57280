package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidrecon/internal/config"
)

const sessionContextKey = "session_id"

// Session reads the session cookie, minting a new session ID when the cookie
// is absent or not a UUID. The ID is set on the request context and the
// cookie is refreshed on every request so active sessions do not expire.
func Session(cfg *config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL.Seconds())
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.CookieSecure, true)
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// GetSessionID extracts the session ID set by the Session middleware.
func GetSessionID(c *gin.Context) (string, error) {
	id, ok := c.Get(sessionContextKey)
	if !ok {
		return "", errors.New("session id not found in context")
	}
	s, ok := id.(string)
	if !ok || s == "" {
		return "", errors.New("session id has invalid type")
	}
	return s, nil
}
