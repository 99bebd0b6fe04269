package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionKey   = "sid"
	sessionIDCtx = "session_id"
)

// EnsureSession gives every browser a stable anonymous identity. Players
// are seated by this id, so it must survive page reloads.
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(sessionKey).(string)
		if id == "" {
			id = uuid.NewString()
			session.Set(sessionKey, id)
			if err := session.Save(); err != nil {
				log.Error().Err(err).Msg("saving session")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
				return
			}
		}
		c.Set(sessionIDCtx, id)
		c.Next()
	}
}

// SessionID returns the id stored by EnsureSession.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDCtx)
}
