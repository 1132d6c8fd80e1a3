package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/manajir-storefront/config"
)

const (
	SessionIDKey    = "session_id"
	SessionIDHeader = "X-Session-ID"
)

// Session assigns every client a storefront session id. The id is taken
// from the X-Session-ID header or the session cookie; a missing or
// malformed id is replaced by a new one and the cookie is (re)issued.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader(SessionIDHeader)
		if sid == "" {
			sid, _ = c.Cookie(cfg.CookieName)
		}
		if sid == "" {
			// WebSocket clients cannot set headers
			sid = c.Query("session_id")
		}

		if _, err := uuid.Parse(sid); err != nil {
			if sid != "" {
				GetLoggerFromContext(c).Debug("Replacing malformed session id", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
			sid = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sid, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Header(SessionIDHeader, sid)
		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// GetSessionID extracts the storefront session id from context
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
