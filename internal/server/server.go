// Package server is the local development stub of the Controle backend. It
// implements the same contract the production deployment exposes (cookie
// sessions, role checks, document numbering) so the CLI can be exercised
// without it.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/controle-pgm/controle/internal/auth"
	"github.com/controle-pgm/controle/internal/config"
	"github.com/controle-pgm/controle/internal/models"
)

// Server represents the stub HTTP server.
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	tokens    *auth.Manager
}

// New creates a new server instance.
func New(cfg *config.Config, zlog zerolog.Logger) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = hex.EncodeToString(secretBytes)
		zlog.Info().Msg("No JWT secret configured, generated an ephemeral one")
	}

	validate := validator.New()
	validate.RegisterValidation("policy", func(fl validator.FieldLevel) bool {
		return auth.CheckPasswordPolicy(fl.Field().String()) == nil
	})

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validate,
		tokens:    auth.NewManager(secret),
	}

	if cfg.Seed {
		if err := server.seedDefaultAdmin(); err != nil {
			return nil, err
		}
	}

	server.setupRouter()

	return server, nil
}

// seedDefaultAdmin creates the initial admin account on an empty database.
// The temporary password forces a change on first login, the same flow a
// production operator goes through.
func (s *Server) seedDefaultAdmin() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := models.User{
		Email:              "admin@controle.local",
		Name:               "Administrator",
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		IsActive:           true,
		MustChangePassword: true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	s.logger.Info().Str("email", admin.Email).Msg("Seeded default admin (password: admin123, change required)")
	return nil
}

// setupRouter configures the Gin router with routes and middleware.
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// Credentialed CORS for the web UI; a CLI-only deployment runs without it.
	if s.config.CORSOrigin != "" {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{s.config.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints. Logout is deliberately unauthenticated: clearing
	// an already-dead cookie must not 401.
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/logout", s.logout)

	api := s.router.Group("/api")
	api.Use(s.sessionMiddleware())
	{
		api.GET("/auth/me", s.me)
		api.POST("/auth/change-password", s.changePassword)

		api.POST("/numbers/generate", s.generateNumber)
		api.GET("/numbers/current", s.currentNumber)
		api.GET("/numbers/sequences", s.listSequences)

		api.GET("/history", s.listHistory)

		admin := api.Group("")
		admin.Use(s.adminOnlyMiddleware())
		{
			admin.POST("/numbers/correct", s.correctNumber)

			admin.GET("/users", s.listUsers)
			admin.POST("/users", s.createUser)
			admin.GET("/users/:id", s.getUser)
			admin.PATCH("/users/:id", s.updateUser)
			admin.POST("/users/:id/reset-password", s.resetUserPassword)

			admin.GET("/document-types", s.listDocumentTypes)
			admin.POST("/document-types", s.createDocumentType)
			admin.GET("/document-types/:id", s.getDocumentType)
			admin.PATCH("/document-types/:id", s.updateDocumentType)
		}
	}
}

// loggingMiddleware creates a request logging middleware using zerolog.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Handler exposes the router, mainly for tests driving the server with
// httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("Stub server listening")
	return srv.ListenAndServe()
}
