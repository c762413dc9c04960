package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/internal/pipeline"
)

// Server exposes the minutes pipeline over HTTP. One upload produces one
// SSE stream of minutes chunks.
type Server struct {
	cfg    *config.Config
	pipe   pipeline.Pipeline
	logger logger.Logger
}

// New creates a new Server instance
func New(cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger) *Server {
	return &Server{
		cfg:    cfg,
		pipe:   pipe,
		logger: log,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/v1/minutes", s.handleMinutes)

	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	s.logger.Info(ctx, "HTTP server listening on %s", s.cfg.Server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
