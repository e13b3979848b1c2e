package http

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	feedService "github.com/reshetovitsme/tg-watch-relay/internal/modules/feed/service"
	migrationService "github.com/reshetovitsme/tg-watch-relay/internal/modules/migration/service"
	watchService "github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/service"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/config"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// Server exposes the management API, delivery feeds and metrics
type Server struct {
	cfg       *config.Config
	watches   *watchService.Service
	migration *migrationService.Service
	feeds     *feedService.Service
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	server    *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, watches *watchService.Service, migration *migrationService.Service, feeds *feedService.Service, gatherer prometheus.Gatherer) *Server {
	return &Server{
		cfg:       cfg,
		watches:   watches,
		migration: migration,
		feeds:     feeds,
		gatherer:  gatherer,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler builds the routed handler with logging and recovery middleware
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /watchers/{watcherID}/destination", s.handleGetDestination)
	api.HandleFunc("PUT /watchers/{watcherID}/destination", s.handleSetDestination)
	api.HandleFunc("DELETE /watchers/{watcherID}/destination", s.handleRemoveDestination)

	api.HandleFunc("GET /watchers/{watcherID}/subscriptions", s.handleListSubscriptions)
	api.HandleFunc("POST /watchers/{watcherID}/subscriptions", s.handleWatch)
	api.HandleFunc("DELETE /watchers/{watcherID}/subscriptions/{subscriptionID}", s.handleUnwatch)

	api.HandleFunc("GET /subscriptions/{subscriptionID}/filters", s.handleListFilters)
	api.HandleFunc("POST /subscriptions/{subscriptionID}/filters", s.handleAddFilter)
	api.HandleFunc("DELETE /subscriptions/{subscriptionID}/filters/{filterID}", s.handleRemoveFilter)

	api.HandleFunc("POST /migrations", s.handleMigration)
	api.HandleFunc("GET /feeds/{watcherID}", s.handleFeed)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", s.authorize(api))

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// authorize requires the configured API token as a bearer token, or as the
// token query parameter for feed readers. An empty token disables the check.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			token = bearer
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APIToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	since, ok := sinceParam(w, r)
	if !ok {
		return
	}

	// Get base URL from request
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feeds.GenerateFeed(r.Context(), watcherID, baseURL, since)
	if err != nil {
		s.logger.Error("Error generating feed", "watcher_id", watcherID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

// sinceParam reads the optional since query parameter as RFC 3339 or unix
// seconds.
func sinceParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "since must be RFC 3339 or unix seconds"})
	return time.Time{}, false
}

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrDuplicateSubscription):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrDestinationNotFound):
		return http.StatusPreconditionFailed
	case stderrors.Is(err, errors.ErrSubscriptionNotFound), stderrors.Is(err, errors.ErrFilterNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrUnauthorized):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrInvalidFilter), stderrors.Is(err, errors.ErrInvalidMigration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
