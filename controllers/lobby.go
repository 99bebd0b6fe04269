package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"Impostor/middleware"
	"Impostor/services/game"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// @Summary Creates a new lobby
// @Description Creates a waiting lobby with the caller as host
// @Tags lobby
// @Accept json
// @Produce json
// @Param body body game.CreateLobbyInput true "Host name, optional lobby name and settings"
// @Success 201 {object} game.Membership
// @Failure 422 {object} object{error=string,fields=object}
// @Router /lobby [post]
func CreateLobby(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in game.CreateLobbyInput
		if !bindJSON(c, &in) {
			return
		}
		seat, err := svc.CreateLobby(c.Request.Context(), middleware.SessionID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, seat)
	}
}

// @Summary Joins a lobby
// @Description Seats the caller, or returns their existing seat
// @Tags lobby
// @Accept json
// @Produce json
// @Param code path string true "Lobby code"
// @Param body body game.JoinLobbyInput true "Player name"
// @Success 200 {object} game.Membership
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /lobby/{code}/join [post]
func JoinLobby(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		var in game.JoinLobbyInput
		if !bindJSON(c, &in) {
			return
		}
		seat, err := svc.JoinLobby(c.Request.Context(), code, middleware.SessionID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, seat)
	}
}

// @Summary Lobby status
// @Description Public probe used by join pages
// @Tags lobby
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.LobbyStatus
// @Failure 404 {object} object{error=string}
// @Router /lobby/{code}/status [get]
func LobbyStatus(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		status, err := svc.GetLobbyStatus(c.Request.Context(), code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// @Summary Join QR code
// @Description PNG QR code encoding the join URL of the lobby
// @Tags lobby
// @Produce png
// @Param code path string true "Lobby code"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string}
// @Router /lobby/{code}/qr [get]
func LobbyQR(svc *game.Service, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		if _, err := svc.GetLobbyStatus(c.Request.Context(), code); err != nil {
			respondError(c, err)
			return
		}
		png, err := qrcode.Encode(JoinURL(publicURL, code), qrcode.Medium, qrSize)
		if err != nil {
			respondError(c, fmt.Errorf("encode qr: %w", err))
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// JoinURL is the link players open to join a lobby.
func JoinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/join/" + code
}

// @Summary Starts the game
// @Tags lobby
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} game.RoundSummary
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /lobby/{code}/start [post]
func StartGame(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		summary, err := svc.StartGame(c.Request.Context(), code, middleware.SessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// @Summary Updates lobby settings
// @Tags lobby
// @Accept json
// @Produce json
// @Param code path string true "Lobby code"
// @Param body body game.SettingsPatch true "Fields to change"
// @Success 200 {object} object{settings=postgres.Settings}
// @Failure 403 {object} object{error=string}
// @Failure 422 {object} object{error=string,fields=object}
// @Router /lobby/{code}/settings [patch]
func UpdateSettings(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		var patch game.SettingsPatch
		if !bindJSON(c, &patch) {
			return
		}
		settings, err := svc.UpdateSettings(c.Request.Context(), code, middleware.SessionID(c), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

// @Summary Leaves a lobby
// @Tags lobby
// @Produce json
// @Param code path string true "Lobby code"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Router /lobby/{code}/leave [post]
func LeaveLobby(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := lobbyCode(c)
		if !ok {
			return
		}
		if err := svc.LeaveLobby(c.Request.Context(), code, middleware.SessionID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "left lobby"})
	}
}
