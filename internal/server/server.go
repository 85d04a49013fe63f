// Package server exposes the tool handlers and cache admin surface over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/dart"
	"github.com/rshade/dartfocus/internal/logging"
	"github.com/rshade/dartfocus/internal/tools"
	"github.com/rshade/dartfocus/pkg/version"
)

// Server routes HTTP requests to the tool service.
type Server struct {
	service *tools.Service
	logger  zerolog.Logger
	router  *gin.Engine
}

// New builds the HTTP server around a tool service.
func New(service *tools.Service, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		service: service,
		logger:  logging.ComponentLogger(logger, "server"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.GET("/company/:corp_code", s.handleCompany)
	api.GET("/financials/:corp_code", s.handleFinancials)
	api.GET("/ratios/:corp_code", s.handleRatios)
	api.GET("/disclosures/:corp_code", s.handleDisclosures)
	api.GET("/timeseries/:corp_code", s.handleTimeSeries)
	api.GET("/cache/stats", s.handleCacheStats)
	api.POST("/cache/sweep", s.handleCacheSweep)
	api.DELETE("/cache", s.handleCacheClear)

	s.router = router
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then drains with a short
// grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
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

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) handleCompany(c *gin.Context) {
	payload, err := s.service.CompanyInfo(c.Request.Context(), c.Param("corp_code"))
	s.respond(c, payload, err)
}

func (s *Server) handleFinancials(c *gin.Context) {
	year := c.DefaultQuery("year", strconv.Itoa(time.Now().Year()-1))
	reportCode := c.DefaultQuery("report_code", dart.ReportAnnual)

	payload, err := s.service.FinancialStatement(c.Request.Context(), c.Param("corp_code"), year, reportCode)
	s.respond(c, payload, err)
}

func (s *Server) handleRatios(c *gin.Context) {
	year := c.DefaultQuery("year", strconv.Itoa(time.Now().Year()-1))

	payload, err := s.service.FinancialRatios(c.Request.Context(), c.Param("corp_code"), year)
	s.respond(c, payload, err)
}

func (s *Server) handleDisclosures(c *gin.Context) {
	now := time.Now()
	from := c.DefaultQuery("from", now.AddDate(0, -3, 0).Format("20060102"))
	to := c.DefaultQuery("to", now.Format("20060102"))

	pageCount, err := strconv.Atoi(c.DefaultQuery("page_count", "10"))
	if err != nil || pageCount < 1 || pageCount > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_count must be between 1 and 100"})
		return
	}

	payload, err := s.service.Disclosures(c.Request.Context(), c.Param("corp_code"), from, to, pageCount)
	s.respond(c, payload, err)
}

func (s *Server) handleTimeSeries(c *gin.Context) {
	metric := c.DefaultQuery("metric", tools.MetricRevenue)
	fromYear, _ := strconv.Atoi(c.Query("from"))
	toYear, _ := strconv.Atoi(c.Query("to"))
	projections, err := strconv.Atoi(c.DefaultQuery("project", "2"))
	if err != nil || projections < 0 || projections > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project must be between 0 and 10"})
		return
	}

	payload, err := s.service.TimeSeries(c.Request.Context(), c.Param("corp_code"), metric, fromYear, toYear, projections)
	s.respond(c, payload, err)
}

// cacheEngine returns the engine or answers 503 when caching is disabled.
func (s *Server) cacheEngine(c *gin.Context) (*cache.Engine, bool) {
	engine := s.service.Engine()
	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "caching is disabled"})
		return nil, false
	}
	return engine, true
}

func (s *Server) handleCacheStats(c *gin.Context) {
	engine, ok := s.cacheEngine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.Stats())
}

func (s *Server) handleCacheSweep(c *gin.Context) {
	engine, ok := s.cacheEngine(c)
	if !ok {
		return
	}
	removed, err := engine.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) handleCacheClear(c *gin.Context) {
	engine, ok := s.cacheEngine(c)
	if !ok {
		return
	}

	raw, ok := c.GetQuery("category")
	if !ok {
		removed, err := engine.ClearAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
		return
	}

	category := cache.Category(raw)
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown cache category: " + raw})
		return
	}

	removed, err := engine.Clear(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "category": category})
}

// respond maps service errors onto HTTP statuses and streams raw cache
// payloads through without re-encoding.
func (s *Server) respond(c *gin.Context, payload json.RawMessage, err error) {
	switch {
	case err == nil:
		c.Data(http.StatusOK, "application/json", payload)
	case errors.Is(err, dart.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for request"})
	case errors.Is(err, dart.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "upstream quota exceeded"})
	case errors.Is(err, dart.ErrInvalidAPIKey):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream rejected api key"})
	case errors.Is(err, tools.ErrUnknownMetric):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
