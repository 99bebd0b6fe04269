package controllers

import (
	"net/http"

	"Impostor/middleware"
	"Impostor/services/game"

	"github.com/gin-gonic/gin"
)

// @Summary Sends a chat message
// @Description Public when recipient_id is empty, a direct message otherwise
// @Tags chat
// @Accept json
// @Produce json
// @Param code path string true "Lobby code"
// @Param body body game.MessageInput true "Message"
// @Success 201 {object} events.MessagePayload
// @Failure 403 {object} object{error=string}
// @Failure 422 {object} object{error=string,fields=object}
// @Router /game/{code}/messages [post]
func SendMessage(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		var in game.MessageInput
		if !bindJSON(c, &in) {
			return
		}
		msg, err := svc.SendMessage(c.Request.Context(), code, middleware.SessionID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// @Summary Chat history
// @Description Latest public messages and the caller's direct messages, oldest first
// @Tags chat
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} object{messages=[]events.MessagePayload}
// @Failure 403 {object} object{error=string}
// @Router /game/{code}/messages [get]
func Messages(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		msgs, err := svc.Messages(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}
