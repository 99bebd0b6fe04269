package controllers

import (
	"net/http"
	"time"

	"Impostor/middleware"

	"github.com/gin-gonic/gin"
)

// @Summary Issues a socket.io token
// @Description Returns a signed token binding the socket handshake to the caller's session cookie
// @Tags session
// @Produce json
// @Success 200 {object} object{session_id=string,token=string,expires_at=string}
// @Failure 500 {object} object{error=string}
// @Router /session/token [get]
func SessionToken(tokens *middleware.TokenManager, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.SessionID(c)
		now := time.Now()
		token, err := tokens.Generate(session, now)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": session,
			"token":      token,
			"expires_at": now.Add(ttl).UTC(),
		})
	}
}
