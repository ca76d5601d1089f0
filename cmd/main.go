package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "playback_lights/docs"
	"playback_lights/internal/artwork"
	"playback_lights/internal/config"
	"playback_lights/internal/govee"
	"playback_lights/internal/handlers"
	"playback_lights/internal/logger"
	"playback_lights/internal/notify"
	"playback_lights/internal/repository"
	"playback_lights/internal/repository/db"
	"playback_lights/internal/server"
	"playback_lights/internal/service"
	"playback_lights/internal/settings"
)

const shutdownTimeout = 10 * time.Second

// @title                       Playback Lights API
// @version                     1.0
// @description                 Syncs Govee lights to media player playback.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml and PLAYBACK_LIGHTS_* overrides
	cfg, err := config.Load("configs")

	// init logger
	log := logger.Get(cfg.LogLevel)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(conn)
	if err := settings.Register(ctx, repos.Settings, log.Named("settings")); err != nil {
		log.Fatalw("failed to register settings", "err", err)
	}
	if cfg.AuthSigningKey == "" {
		log.Warnw("auth.signing_key is empty; sign-in and protected routes will reject every request")
	}

	hub := notify.NewHub()
	services := service.NewService(repos, service.Deps{
		Dispatcher: govee.NewClient(cfg.GoveeEndpoint, cfg.GoveeTimeout, log.Named("govee")),
		Extractor:  artwork.NewHTTPExtractor(cfg.ArtworkTimeout, cfg.ArtworkMaxBytes),
		Notifier:   hub,
		Log:        log,
		Auth: service.AuthConfig{
			SigningKey: cfg.AuthSigningKey,
			TokenTTL:   cfg.AuthTokenTTL,
		},
		QueueSize: cfg.EventsBuffer,
	})
	apiHandler := handlers.NewHandler(services, hub, log.Named("http"))

	// start the sync loop
	go services.Sync.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port, "db", cfg.DBPath)

	// graceful shutdown
	waitForShutdown(cancel, srv, hub, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Debugw("opening sqlite", "path", cfg.DBPath)
	return db.InitDB(cfg.DBPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, hub *notify.Hub, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the sync loop and release websocket subscribers
	cancel()
	hub.Close()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
