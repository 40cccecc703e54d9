package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hypersql/docpub/internal/config"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/runstore"
)

// MetricsHandler serves the metrics endpoint. Nil disables /metrics.
type MetricsHandler = http.Handler

const maxWebhookBody = 1 << 20 // 1 MiB

// HTTPServer exposes the daemon's HTTP surface: webhook intake, health,
// metrics, and recent run history.
type HTTPServer struct {
	cfg      *config.Config
	enqueuer Enqueuer
	store    runstore.Store
	server   *http.Server
}

// NewHTTPServer builds the server and its routes.
func NewHTTPServer(cfg *config.Config, enqueuer Enqueuer, store runstore.Store, metrics MetricsHandler) *HTTPServer {
	s := &HTTPServer{
		cfg:      cfg,
		enqueuer: enqueuer,
		store:    store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/runs", s.handleRuns)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	s.server = &http.Server{
		Addr:              cfg.Daemon.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening in the background.
func (s *HTTPServer) Start() error {
	ln := s.server.Addr
	slog.Info("HTTP server listening", logfields.URL(ln))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleWebhook validates and maps a delivery, then enqueues the run.
func (s *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if !validateSignature(body, r.Header.Get("X-Hub-Signature-256"), s.cfg.Daemon.WebhookSecret) {
		slog.Warn("Webhook signature validation failed")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	evt, ok, err := parseWebhook(eventType, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		// Deliveries we do not act on are still acknowledged.
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ignored"))
		return
	}

	slog.Info("Webhook received",
		logfields.EventKind(string(evt.Kind)),
		logfields.Owner(evt.Owner),
		logfields.Branch(evt.Branch),
		logfields.Commit(evt.Commit))

	if !s.enqueuer.Enqueue(evt) {
		http.Error(w, "run queue full", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("queued"))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRuns returns the most recent runs, newest first.
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.RecentRuns(r.Context(), 20)
	if err != nil {
		slog.Error("Failed to list runs", logfields.Error(err))
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []runstore.Run{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}
