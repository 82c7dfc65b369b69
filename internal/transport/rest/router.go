package rest

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ethicscore/internal/service"
	"ethicscore/internal/transport/rest/handler"
	"ethicscore/internal/transport/rest/middleware"
	"ethicscore/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	ResponseService *service.ResponseService
	ScoreService    *service.ScoreService
	WSHub           *ws.Hub
	Logger          *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	scoreHandler := handler.NewScoreHandler(c.ScoreService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	wsHandler := ws.NewHandler(c.WSHub, authMW, logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/projects/{projectId}", wsHandler.ProjectWS).Methods("GET")

	// Evaluator routes (evaluator or operator token)
	evaluatorRoutes := v1.NewRoute().Subrouter()
	evaluatorRoutes.Use(authMW.RequireAuth)

	evaluatorRoutes.HandleFunc("/projects/{projectId}/responses/{questionnaireKey}", responseHandler.SaveDraft).Methods("PUT", "OPTIONS")
	evaluatorRoutes.HandleFunc("/projects/{projectId}/responses/{questionnaireKey}", responseHandler.Get).Methods("GET", "OPTIONS")
	evaluatorRoutes.HandleFunc("/projects/{projectId}/responses/{questionnaireKey}/submit", responseHandler.Submit).Methods("POST", "OPTIONS")

	// Operator routes
	operatorRoutes := v1.NewRoute().Subrouter()
	operatorRoutes.Use(authMW.RequireOperator)

	operatorRoutes.HandleFunc("/evaluator-tokens", authHandler.IssueEvaluatorToken).Methods("POST", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/scores", scoreHandler.List).Methods("GET", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/scores/{userId}/combined/compute", scoreHandler.ComputeCombined).Methods("POST", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/scores/{userId}/{questionnaireKey}/compute", scoreHandler.Compute).Methods("POST", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/project-score", scoreHandler.GetProject).Methods("GET", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/project-score/compute", scoreHandler.ComputeProject).Methods("POST", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/hotspots", scoreHandler.Hotspots).Methods("GET", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/hotspots/top", scoreHandler.TopHotspots).Methods("GET", "OPTIONS")
	operatorRoutes.HandleFunc("/projects/{projectId}/recompute", scoreHandler.Recompute).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization, X-Request-ID"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
