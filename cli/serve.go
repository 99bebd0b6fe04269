package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Impostor/config"
	_ "Impostor/config/swagger"
	"Impostor/middleware"
	"Impostor/routes"
	"Impostor/services/game"
	"Impostor/services/redis"
	"Impostor/services/socket_io"
	socketio_types "Impostor/services/socket_io/types"
	"Impostor/services/words"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and socket.io server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Info().Msg("setting up server...")
	if cfg.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("reading database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := prepareDatabase(ctx, cfg, gormDB); err != nil {
		return err
	}

	redisClient, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to Redis: %w", err)
	}
	defer redis.CloseRedis(redisClient)

	sockets := socketio_types.NewSocketServer()
	svc := game.NewService(gormDB, words.NewSelector(cfg.WordCooldown), redisClient, sockets, game.Options{
		Language:         cfg.Language,
		AutoRestartDelay: cfg.AutoRestartDelay,
	})
	defer svc.Close()

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	r := gin.New()
	middleware.SetUpMiddleware(r, cfg)
	routes.SetupRoutes(r, cfg, svc, tokens)

	sio := (*socket_io.MySocketServer)(sockets)
	sio.Start(r, svc, tokens, cfg.AllowedOrigins)
	defer sio.Close()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Bool("tls", cfg.UseTLS()).Msg("listening")
		var err error
		if cfg.UseTLS() {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
