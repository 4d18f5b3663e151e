// Package server exposes the tick store and analytics engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/analytics"
	"statarb-lab/internal/observability"
	"statarb-lab/internal/store"
)

// Server is the HTTP API over one tick store and one analytics engine.
type Server struct {
	store   *store.TickStore
	engine  *analytics.Engine
	logger  *log.Logger
	started time.Time

	httpSrv *http.Server
}

// New creates the API server. Routes are registered on a fresh router.
func New(addr string, s *store.TickStore, engine *analytics.Engine, logger *log.Logger, metrics *observability.Metrics) *Server {
	srv := &Server{
		store:   s,
		engine:  engine,
		logger:  logger,
		started: time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", srv.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/status", srv.handleStatus).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ticks", srv.handleRecentTicks).Methods(http.MethodGet)
	api.HandleFunc("/ticks", srv.handleClear).Methods(http.MethodDelete)
	api.HandleFunc("/ticks/resampled", srv.handleResampled).Methods(http.MethodGet)
	api.HandleFunc("/analytics", srv.handleAnalytics).Methods(http.MethodPost)

	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv
}

// ListenAndServe runs the HTTP server until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.httpSrv.Addr).Info("api server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
