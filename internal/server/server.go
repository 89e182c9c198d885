package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/galaksio/quote-engine/internal/engine"
	"github.com/galaksio/quote-engine/internal/storage"
	"github.com/galaksio/quote-engine/internal/version"
)

// Options tune the HTTP service.
type Options struct {
	Listen          string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the quote engine over HTTP.
type Server struct {
	opts    Options
	engine  *engine.Engine
	history storage.HistoryStore
	logger  zerolog.Logger
	http    *http.Server
}

// New constructs the HTTP server. history may be nil.
func New(opts Options, eng *engine.Engine, history storage.HistoryStore, logger zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:    opts,
		engine:  eng,
		history: history,
		logger:  logger.With().Str("component", "http_server").Logger(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/", s.root)
	router.GET("/health", s.health)
	router.GET("/providers", s.providers)

	quotes := router.Group("/quotes")
	{
		quotes.POST("/compute", s.compareCompute)
		quotes.POST("/storage", s.compareStorage)
		quotes.POST("/cache", s.compareCache)
	}

	// Broker-facing endpoints.
	broker := router.Group("/quote")
	{
		broker.POST("/store", s.storeQuote)
		broker.POST("/run", s.runQuote)
		broker.POST("/cache", s.cacheQuote)
		broker.POST("/best", s.bestQuote)
	}

	s.http = &http.Server{
		Addr:              opts.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Run serves until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.opts.Listen).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "galaksio-quote-engine",
		"version":     version.Version,
		"description": "multi-cloud pricing aggregator",
		"endpoints": gin.H{
			"health":    "/health",
			"providers": "/providers",
			"store":     "/quote/store",
			"run":       "/quote/run",
			"cache":     "/quote/cache",
			"best":      "/quote/best",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version.Version,
		"service":   "galaksio-quote-engine",
	})
}

func (s *Server) providers(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Providers())
}

// recordHistory appends the comparison to the audit log when one is
// configured. Failures are logged and never affect the response.
func (s *Server) recordHistory(ctx context.Context, cmp *engine.Comparison) {
	if s.history == nil {
		return
	}
	if _, err := s.history.InsertComparison(ctx, cmp); err != nil {
		s.logger.Error().Err(err).Msg("failed to record comparison history")
	}
}
