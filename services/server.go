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

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	ws "github.com/TheGringo-ai/LineSmart-sub000/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config            *Config
	store             repository.Store
	rawDB             *gorm.DB
	extractor         *ExtractorService
	prompts           *PromptBuilder
	rag               *RAGService
	providers         *ProviderChainService
	parser            *ParserService
	fallback          *FallbackService
	cache             GenerationCache
	sessions          *QuizSessionStore
	trainingService   *TrainingService
	authService       *AuthService
	authEndpoints     *AuthEndpoints
	setupEndpoints    *SetupEndpoints
	employeeEndpoints *EmployeeEndpoints
	trainingEndpoints *TrainingEndpoints
	wsHub             *ws.Hub
	upgrader          websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetStore sets the persistence backend. rawDB may be nil when the
// store is not database backed.
func (s *Server) SetStore(store repository.Store, rawDB *gorm.DB) {
	s.store = store
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	s.extractor = NewExtractorService()
	slog.Info("Extractor service initialized")

	s.prompts = NewPromptBuilder()
	s.rag = NewRAGService()

	s.providers = NewProviderChainService(s.config.AI)
	slog.Info("Provider chain initialized", "fallback_endpoint", s.config.AI.FallbackEndpoint)

	parser, err := NewParserService()
	if err != nil {
		return err
	}
	s.parser = parser

	s.fallback = NewFallbackService()

	if s.config.Redis.URL != "" {
		cache, err := NewRedisGenerationCache(s.config.Redis.URL)
		if err != nil {
			slog.Error("Failed to connect to Redis, using in-memory cache", "error", err)
			s.cache = NewMemoryGenerationCache()
		} else {
			s.cache = cache
			slog.Info("Redis generation cache initialized")
		}
	} else {
		s.cache = NewMemoryGenerationCache()
		slog.Info("In-memory generation cache initialized")
	}

	s.sessions = NewQuizSessionStore()

	if s.store != nil {
		s.trainingService = NewTrainingService(s.store, s.extractor, s.prompts, s.rag, s.providers, s.parser, s.fallback, s.cache, s.sessions)
		slog.Info("Training service initialized")
	}

	if s.config.JWT.Secret != "" && s.store != nil {
		s.authService = NewAuthService(s.store, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.store != nil {
		s.setupEndpoints = NewSetupEndpoints(s.store)
		s.employeeEndpoints = NewEmployeeEndpoints(s.store)
		s.trainingEndpoints = NewTrainingEndpoints(s.store, s.trainingService, s.rag)

		s.wsHub = ws.NewHub(s.store)
		go s.wsHub.Run()
	}

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		// Authentication routes
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}

		// Protected routes
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Get("/ws", s.websocketHandlerFunc)
				if s.authEndpoints != nil {
					s.authEndpoints.RegisterProtectedRoutes(r)
				}
				if s.setupEndpoints != nil {
					s.setupEndpoints.RegisterRoutes(r)
				}
				if s.employeeEndpoints != nil {
					s.employeeEndpoints.RegisterRoutes(r)
				}
				if s.trainingEndpoints != nil {
					s.trainingEndpoints.RegisterRoutes(r)
				}
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

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	} else if s.store != nil {
		dbStatus = "memory"
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

	slog.Info("API v1 accessed")
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	// Get user from context (set by auth middleware)
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "email", user.Email)

	// Register client with hub
	client := s.wsHub.RegisterClient(conn, user.ID, user.CompanyID)

	// Start goroutines for reading and writing
	go client.WritePump()
	client.ReadPump()
}
