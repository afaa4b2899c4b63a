// Package api serves the derived launchpad tables over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"curveScope/internal/metrics"
	"curveScope/internal/storage"
)

const (
	volumeWindow       = 24 * time.Hour
	detailTradeLimit   = 50
	defaultTrendingTop = 10
)

// Controller holds the dependencies shared by the handlers.
type Controller struct {
	store   storage.Reader
	metrics *metrics.Engine
	logger  *zap.Logger
	now     func() time.Time
}

func NewController(store storage.Reader, engine *metrics.Engine, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   store,
		metrics: engine,
		logger:  logger,
		now:     time.Now,
	}
}

// NewRouter registers every route. Literal paths precede their {address} siblings.
func (c *Controller) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", c.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", c.metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/tokens", c.ListTokens).Methods(http.MethodGet)
	r.HandleFunc("/api/tokens/trending", c.TrendingTokens).Methods(http.MethodGet)
	r.HandleFunc("/api/tokens/{address}", c.TokenDetail).Methods(http.MethodGet)

	r.HandleFunc("/api/trades/recent", c.RecentTrades).Methods(http.MethodGet)
	r.HandleFunc("/api/trades/{address}", c.TradesForToken).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.Use(c.logRequests)
	return r
}

func (c *Controller) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": c.now().UTC().Format(time.RFC3339),
	})
}

func (c *Controller) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(started)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
