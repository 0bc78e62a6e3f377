// Package ops exposes the sampler's operational endpoint: health, Prometheus
// metrics and the most recently stored sample. The latest sample is served
// from process memory so the endpoint never touches the sink.
package ops

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkraev/aqwatch/internal/models"
)

// Server bundles router and state for the operational endpoint.
type Server struct {
	addr   string
	engine *gin.Engine
	latest atomic.Pointer[models.LiveSample]
}

// New constructs a server with routes and middleware.
func New(addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{addr: addr, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// SetLatest publishes the most recently stored sample.
func (s *Server) SetLatest(sample models.LiveSample) {
	s.latest.Store(&sample)
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/v1/latest", s.handleLatest)
}

func (s *Server) handleLatest(c *gin.Context) {
	sample := s.latest.Load()
	if sample == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sample stored yet"})
		return
	}

	c.JSON(http.StatusOK, sample)
}
