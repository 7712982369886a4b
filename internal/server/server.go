package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/config"
	"github.com/ngenohkevin/reeldeck/internal/files"
	"github.com/ngenohkevin/reeldeck/internal/player"
	"github.com/ngenohkevin/reeldeck/internal/session"
	"github.com/ngenohkevin/reeldeck/internal/systemd"
)

// Server represents the HTTP server
type Server struct {
	cfg           *config.Config
	router        *gin.Engine
	handlers      *Handlers
	setupHandlers *SetupHandlers
	auth          *AuthService
	limiter       *RateLimiter
	notifier      *systemd.Notifier
	httpServer    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	return newServer(cfg, nil)
}

// newServer lets tests adjust the session options
func newServer(cfg *config.Config, tune func(*session.Options)) (*Server, error) {
	// Set Gin mode based on log level
	if cfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	lister, err := files.NewOSLister(cfg.MediaRoot)
	if err != nil {
		return nil, err
	}
	permission := files.NewOSPermission(lister.Root())
	playable := files.ExtensionMatcher(cfg.VideoExtensions)

	opts := session.Options{
		Lister:     lister,
		Resolver:   lister,
		Permission: permission,
		Playable:   playable,
		Tuning: player.Tuning{
			SeekStep:        cfg.SeekStep.Seconds(),
			ControlsTimeout: cfg.ControlsTimeout,
		},
		AutoFullscreen: cfg.AutoFullscreen,
		TTL:            cfg.SessionTTL,
		Debug:          cfg.Debug(),
	}
	if tune != nil {
		tune(&opts)
	}

	auth := NewAuthService(cfg.APIKey, cfg.JWTSecret)

	s := &Server{
		cfg:           cfg,
		router:        gin.New(),
		handlers:      NewHandlers(cfg, auth, session.NewManager(opts), lister, permission, playable),
		setupHandlers: NewSetupHandlers(cfg),
		auth:          auth,
		limiter:       NewRateLimiter(cfg.RateLimitRPS),
		notifier:      systemd.NewNotifier(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(RecoveryMiddleware())

	// Logger middleware
	s.router.Use(LoggerMiddleware())

	// CORS middleware
	s.router.Use(CORSMiddleware(s.cfg.AllowedOrigins))

	// Rate limiting
	s.router.Use(RateLimitMiddleware(s.limiter))
}

func (s *Server) setupRoutes() {
	// Health check (no auth)
	s.router.GET("/health", s.handlers.HealthCheck)

	// Setup routes (no auth required in setup mode)
	if s.cfg.SetupMode {
		setup := s.router.Group("/setup")
		{
			setup.POST("/generate", s.setupHandlers.GenerateKey)
			setup.POST("/save", s.setupHandlers.SaveKey)
		}
	}

	// API routes (require auth)
	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.auth))

	// Streaming accepts media tokens
	api.GET("/media", s.handlers.StreamMedia)

	full := api.Group("")
	full.Use(FullAccessMiddleware())
	{
		// Device
		full.GET("/info", s.handlers.GetInfo)
		full.GET("/storage", s.handlers.GetStorage)
		full.GET("/permission", s.handlers.GetPermission)
		full.POST("/permission/request", s.handlers.RequestPermission)
		full.POST("/token", s.handlers.IssueMediaToken)

		// Gallery sessions
		full.POST("/browse", s.handlers.CreateBrowse)
		full.GET("/browse/:id", s.handlers.GetBrowse)
		full.POST("/browse/:id/open", s.handlers.OpenEntry)
		full.POST("/browse/:id/back", s.handlers.NavigateBack)
		full.POST("/browse/:id/root", s.handlers.NavigateRoot)
		full.POST("/browse/:id/crumb/:index", s.handlers.NavigateCrumb)
		full.POST("/browse/:id/refresh", s.handlers.RefreshBrowse)
		full.GET("/browse/:id/events", s.handlers.BrowseEvents)
		full.DELETE("/browse/:id", s.handlers.CloseBrowse)

		// Player sessions
		full.POST("/player", s.handlers.CreatePlayer)
		full.GET("/player/:id", s.handlers.GetPlayer)
		full.POST("/player/:id/action", s.handlers.PlayerAction)
		full.POST("/player/:id/gesture", s.handlers.PlayerGesture)
		full.POST("/player/:id/media", s.handlers.PlayerMedia)
		full.POST("/player/:id/fullscreen", s.handlers.PlayerFullscreen)
		full.GET("/player/:id/events", s.handlers.PlayerEvents)
		full.DELETE("/player/:id", s.handlers.ClosePlayer)

		// Settings (authenticated)
		full.GET("/settings", s.setupHandlers.GetSettings)
		full.PUT("/settings", s.setupHandlers.UpdateSettings)
		full.POST("/settings/generate-key", s.setupHandlers.GenerateKey)
		full.POST("/settings/api-key", s.setupHandlers.SaveKey)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	watchdogCtx, stopWatchdog := context.WithCancel(context.Background())
	defer stopWatchdog()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		s.notifier.Stopping()
		stopWatchdog()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Starting reeldeck on %s, serving %s", s.cfg.Addr(), s.cfg.MediaRoot)

	s.notifier.Ready()
	s.notifier.Status("serving %s", s.cfg.MediaRoot)
	go s.notifier.Watchdog(watchdogCtx)

	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Clean up
	if err := s.Close(); err != nil {
		log.Printf("Error closing handlers: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// Close tears down every session and stops background loops
func (s *Server) Close() error {
	return s.handlers.Close()
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
