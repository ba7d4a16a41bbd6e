package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuestHeader carries the guest session id for clients without cookies.
const GuestHeader = "X-Guest-ID"

const ContextKeyGuestID = "guest_id"

const guestCookieMaxAge = 365 * 24 * 60 * 60

// GuestSession identifies unauthenticated callers. The id comes from the
// X-Guest-ID header, then the named cookie; when neither is present a new id
// is issued as a cookie and echoed in the response header.
func GuestSession(cookieName string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := strings.TrimSpace(c.GetHeader(GuestHeader))
		if guestID == "" {
			if v, err := c.Cookie(cookieName); err == nil {
				guestID = strings.TrimSpace(v)
			}
		}
		if guestID == "" {
			guestID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, guestID, guestCookieMaxAge, "/", "", secure, true)
		}
		c.Header(GuestHeader, guestID)
		c.Set(ContextKeyGuestID, guestID)
		c.Next()
	}
}

// GetGuestID returns the guest session id set by GuestSession.
func GetGuestID(c *gin.Context) string {
	return c.GetString(ContextKeyGuestID)
}
