package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/111KartoFan111/AiAssistant/repository"
	ws "github.com/111KartoFan111/AiAssistant/websocket"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	repo   *repository.GORMRepository
	dbPool *pgxpool.Pool

	geminiService      *GeminiService
	registry           *ActiveSessionRegistry
	interviewService   *InterviewService
	analyticsService   *AnalyticsService
	progressService    *ProgressService
	exportService      *ExportService
	authService        *AuthService
	profileService     *ProfileService
	authEndpoints      *AuthEndpoints
	profileEndpoints   *ProfileEndpoints
	interviewEndpoints *InterviewEndpoints
	analyticsEndpoints *AnalyticsEndpoints
	liveHandler        *LiveInterviewHandler
	wsHub              *ws.Hub
	upgrader           websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connections
func (s *Server) SetDatabase(repo *repository.GORMRepository, pool *pgxpool.Pool) {
	s.repo = repo
	s.dbPool = pool
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey, s.config.AI.GeminiModel)
		slog.Info("Gemini service initialized", "model", s.config.AI.GeminiModel)
	}

	if s.repo != nil {
		abandonAfter := time.Duration(s.config.Interview.AbandonAfterMinutes) * time.Minute
		s.registry = NewActiveSessionRegistry(s.repo, abandonAfter)
		slog.Info("Active session registry initialized", "abandon_after", abandonAfter)

		if s.geminiService != nil {
			s.interviewService = NewInterviewService(s.repo, s.geminiService, s.registry)
			s.analyticsService = NewAnalyticsService(s.repo, s.repo, s.geminiService)
			s.interviewEndpoints = NewInterviewEndpoints(s.interviewService)
			slog.Info("Interview services initialized")
		}

		s.progressService = NewProgressService(s.repo, s.repo)
		s.exportService = NewExportService(s.repo, s.repo)
		if s.analyticsService != nil {
			s.analyticsEndpoints = NewAnalyticsEndpoints(s.analyticsService, s.progressService, s.exportService)
		}
	}

	if s.config.JWT.Secret != "" && s.repo != nil {
		s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		s.profileService = NewProfileService(s.repo)
		s.profileEndpoints = NewProfileEndpoints(s.profileService, s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.interviewService != nil {
		s.liveHandler = NewLiveInterviewHandler(s.interviewService)
	}

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}

		if s.profileEndpoints != nil && s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				s.profileEndpoints.RegisterRoutes(r)
			})
		}

		if s.interviewEndpoints != nil && s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				s.interviewEndpoints.RegisterRoutes(r)
			})
		}

		if s.analyticsEndpoints != nil && s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				s.analyticsEndpoints.RegisterRoutes(r)
			})
		}

		// Live interview websocket (protected)
		if s.liveHandler != nil && s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Get("/ws/interviews/{id}", s.websocketHandlerFunc)
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.registry != nil {
		s.registry.Stop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// checkOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func checkOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

// CheckOrigin exposes the origin check for a given allowed-origins list.
func CheckOrigin(r *http.Request, allowedOrigins string) bool {
	return checkOrigin(r, allowedOrigins)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.dbPool != nil {
		if err := s.dbPool.Ping(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))

	slog.Info("Health check", "status", status, "database", dbStatus)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	interviewID := chi.URLParam(r, "id")

	// Reject before upgrading so the client gets a proper HTTP status
	session, err := s.repo.GetInterviewSession(r.Context(), interviewID)
	if err != nil {
		http.Error(w, "Failed to load interview", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Interview not found", http.StatusNotFound)
		return
	}
	if session.UserID != user.ID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "interview_id", interviewID)

	client := s.wsHub.RegisterClient(conn, user.ID, interviewID)
	client.MessageHandler = func(c *ws.Client, messageBytes []byte) {
		s.liveHandler.HandleMessage(c, user, messageBytes)
	}

	go client.WritePump()
	client.ReadPump()
}
