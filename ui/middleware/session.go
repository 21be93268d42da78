package middleware

import (
	"log"
	"net/http"

	"launchdash/domain/core"
	"launchdash/internal/errors"

	"github.com/gin-gonic/gin"
)

const sessionKey = "launchdash.session_id"

// SessionLookup reports whether a session exists
type SessionLookup interface {
	Exists(id core.SessionID) bool
}

// RequireSession resolves the :id route parameter to a live session and
// stores its ID on the context. Malformed IDs get 400, unknown ones 404.
func RequireSession(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseSessionID(c.Param("id"))
		if err != nil {
			abort(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
			return
		}

		if !sessions.Exists(id) {
			log.Printf("[RequireSession] Session %s not found", id)
			abort(c, http.StatusNotFound, errors.NotFound("session "+id.String()))
			return
		}

		c.Set(sessionKey, id)
		c.Next()
	}
}

// SessionID returns the ID stored by RequireSession
func SessionID(c *gin.Context) core.SessionID {
	if v, ok := c.Get(sessionKey); ok {
		if id, ok := v.(core.SessionID); ok {
			return id
		}
	}
	return ""
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
