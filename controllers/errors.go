package controllers

import (
	"errors"
	"io"
	"net/http"

	"Impostor/services/game"
	"Impostor/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps game errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": game.ErrValidation.Error(), "fields": verr.Fields})
	case errors.Is(err, game.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrNoWordAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no word available, try again later"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// lobbyCode reads the :code path parameter, answering 404 for codes that
// cannot exist.
func lobbyCode(c *gin.Context) (string, bool) {
	code, ok := utils.NormalizeLobbyCode(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
		return "", false
	}
	return code, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
