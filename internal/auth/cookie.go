package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luna-live/backend/config"
)

// SetSessionCookie writes the session credential as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, cfg config.SessionConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, cfg.ExpireHours*3600, "/", "", cfg.CookieSecure, true)
}

// ClearSessionCookie removes the session cookie from the client.
func ClearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

// SessionFromRequest extracts the raw session credential from the request
// cookie; empty string when absent.
func SessionFromRequest(c *gin.Context, cfg config.SessionConfig) string {
	raw, err := c.Cookie(cfg.CookieName)
	if err != nil {
		return ""
	}
	return raw
}
