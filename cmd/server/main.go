package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ethicscore/internal/app"
	"ethicscore/internal/config"
	"ethicscore/internal/transport/rest"
	"ethicscore/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Info("started")

	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	logger.Info("WebSocket hub started")

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.ScoreService.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:     a.AuthService,
		ResponseService: a.ResponseService,
		ScoreService:    a.ScoreService,
		WSHub:           wsHub,
		Logger:          logger,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "operator", cfg.OperatorUsername)
		logger.Info("Endpoints",
			"auth", "POST /v1/auth/login",
			"responses", "PUT /v1/projects/{projectId}/responses/{questionnaireKey}",
			"submit", "POST /v1/projects/{projectId}/responses/{questionnaireKey}/submit",
			"scores", "GET /v1/projects/{projectId}/scores",
			"project_score", "GET /v1/projects/{projectId}/project-score",
			"hotspots", "GET /v1/projects/{projectId}/hotspots",
			"ws", "WS /v1/ws/projects/{projectId}",
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ListenAndServe failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
