package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront-checkout/internal/session"
)

// SessionHeader carries the browsing session id in both directions.
const SessionHeader = "X-Session-Id"

const sessionCtxKey = "session"

// SessionMiddleware resolves the caller's session, minting one when the
// header is absent, and echoes its id back.
func SessionMiddleware(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := reg.Get(c.GetHeader(SessionHeader))
		c.Set(sessionCtxKey, sess)
		c.Set("session_id", sess.ID)
		c.Header(SessionHeader, sess.ID)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionCtxKey).(*session.Session)
}
