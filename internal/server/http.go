package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relocity/relocation-backend/internal/auth"
	"github.com/relocity/relocation-backend/internal/auth/middleware"
	"github.com/relocity/relocation-backend/internal/conf"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	relocationservice "github.com/relocity/relocation-backend/internal/relocation/service"
)

// HTTPServer wraps the gin engine and its listener lifecycle.
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer builds the router and mounts all services.
func NewHTTPServer(
	cfg *conf.Config,
	jwtManager *auth.JWTManager,
	relocationSvc *relocationservice.RelocationService,
	log *logger.Logger,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.RequireSuperuser(jwtManager, log))
	relocationSvc.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
			// ReadTimeout bounds the whole request body, so it follows the
			// upload limit; a stalled client is cut off at the socket too,
			// not only by the blob store's context deadline.
			ReadTimeout:       cfg.Upload.Timeout,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: log,
	}
}

// Start begins serving. It blocks until the listener fails or is shut down.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
