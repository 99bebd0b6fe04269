package controllers

import (
	"net/http"

	"Impostor/middleware"
	"Impostor/services/game"

	"github.com/gin-gonic/gin"
)

// @Summary Game state
// @Description The caller's view of the lobby, including their own word
// @Tags game
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.GameState
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /game/{code}/state [get]
func GameState(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		state, err := svc.GameState(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// @Summary Advances the turn
// @Description Host or current speaker hands the turn to the next active player
// @Tags game
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.TurnInfo
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /game/{code}/next-turn [post]
func NextTurn(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		info, err := svc.NextTurn(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

// @Summary Restarts a finished game
// @Tags game
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.RoundSummary
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /game/{code}/restart [post]
func RestartGame(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		summary, err := svc.RestartGame(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
