package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "storefront_session"
	sessionCtxKey = "sessionID"
)

// sessionMiddleware guarantees every API request carries a session ID,
// issuing a cookie on first contact. The cookie is refreshed on each
// request so active sessions never expire mid-browse.
func sessionMiddleware(ttl time.Duration) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, maxAge, "/", "", false, true)
		c.Set(sessionCtxKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}

// currentUserID is the caller's identity for user-scoped resources.
// Authenticated clients pass X-User-ID; guests fall back to the session.
func currentUserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return sessionID(c)
}
