package controllers

import (
	"net/http"

	"Impostor/middleware"
	"Impostor/services/game"

	"github.com/gin-gonic/gin"
)

// @Summary Casts an elimination ballot
// @Description A null or missing target_id is a skip. Ballots cannot be changed.
// @Tags voting
// @Accept json
// @Produce json
// @Param code path string true "Lobby code"
// @Param body body game.VoteInput false "Target player"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string,fields=object}
// @Router /game/{code}/vote [post]
func VotePlayer(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		var in game.VoteInput
		if !bindOptionalJSON(c, &in) {
			return
		}
		if err := svc.VotePlayer(c.Request.Context(), code, middleware.SessionID(c), in); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "vote recorded"})
	}
}

// @Summary Ends the voting phase
// @Tags voting
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.VotingResult
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /game/{code}/end-voting [post]
func EndVoting(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		result, err := svc.EndVoting(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Votes to skip the discussion
// @Tags voting
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.BallotResult
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /game/{code}/vote-now [post]
func VoteNow(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		result, err := svc.VoteNow(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Votes for a new word
// @Tags voting
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.BallotResult
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /game/{code}/vote-reroll [post]
func VoteReroll(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		result, err := svc.VoteReroll(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
