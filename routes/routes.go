package routes

import (
	"Impostor/config"
	"Impostor/controllers"
	"Impostor/middleware"
	"Impostor/services/game"
	utils "Impostor/utils"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, svc *game.Service, tokens *middleware.TokenManager) {
	// utils global
	router.Use(utils.Logger(), utils.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// public probes used before a player has a seat
	api.GET("/lobby/:code/status", controllers.LobbyStatus(svc))
	api.GET("/lobby/:code/qr", controllers.LobbyQR(svc, cfg.PublicURL))

	session := api.Group("/")
	session.Use(middleware.EnsureSession())
	{
		session.GET("/session/token", controllers.SessionToken(tokens, cfg.TokenTTL))

		session.POST("/lobby", controllers.CreateLobby(svc))
		session.POST("/lobby/:code/join", controllers.JoinLobby(svc))
		session.POST("/lobby/:code/start", controllers.StartGame(svc))
		session.PATCH("/lobby/:code/settings", controllers.UpdateSettings(svc))
		session.POST("/lobby/:code/leave", controllers.LeaveLobby(svc))

		session.GET("/game/:code/state", controllers.GameState(svc))
		session.POST("/game/:code/vote", controllers.VotePlayer(svc))
		session.POST("/game/:code/end-voting", controllers.EndVoting(svc))
		session.POST("/game/:code/next-turn", controllers.NextTurn(svc))
		session.POST("/game/:code/vote-now", controllers.VoteNow(svc))
		session.POST("/game/:code/vote-reroll", controllers.VoteReroll(svc))
		session.POST("/game/:code/restart", controllers.RestartGame(svc))
		session.POST("/game/:code/messages", controllers.SendMessage(svc))
		session.GET("/game/:code/messages", controllers.Messages(svc))
	}
}
