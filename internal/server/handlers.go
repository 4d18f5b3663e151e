package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/estimator"
	"statarb-lab/internal/store"
)

const (
	defaultTickLimit      = 1000
	defaultResampleLimit  = 500
	defaultResampleWindow = time.Second
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("encode response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusResponse reports uptime and buffer occupancy.
type statusResponse struct {
	Status   string         `json:"status"`
	Uptime   string         `json:"uptime"`
	Symbols  []string       `json:"symbols"`
	Buffered map[string]int `json:"buffered"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	buffered := make(map[string]int)
	for _, t := range s.store.Recent() {
		buffered[t.Symbol]++
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:   "running",
		Uptime:   time.Since(s.started).String(),
		Symbols:  s.store.Symbols(),
		Buffered: buffered,
	})
}

func (s *Server) handleRecentTicks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTickLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ticks := s.store.Recent()
	if limit > 0 && len(ticks) > limit {
		ticks = ticks[len(ticks)-limit:]
	}
	s.writeJSON(w, http.StatusOK, ticks)
}

func (s *Server) handleResampled(w http.ResponseWriter, r *http.Request) {
	interval := defaultResampleWindow
	if raw := r.URL.Query().Get("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		interval = d
	}
	limit, err := queryInt(r, "limit", defaultResampleLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.store.Resampled(r.Context(), interval, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInterval) || errors.Is(err, store.ErrInvalidInput) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// analyticsRequest is the POST /api/v1/analytics body. Zero-valued entry
// and exit thresholds fall back to the defaults used by the offline tools.
type analyticsRequest struct {
	SymbolX string  `json:"symbol_x"`
	SymbolY string  `json:"symbol_y"`
	Method  string  `json:"method"`
	Window  int     `json:"window"`
	Delta   float64 `json:"delta,omitempty"`
	R       float64 `json:"r,omitempty"`
	EntryZ  float64 `json:"entry_z"`
	ExitZ   float64 `json:"exit_z"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.SymbolX == "" || req.SymbolY == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("symbol_x and symbol_y are required"))
		return
	}
	if req.EntryZ == 0 {
		req.EntryZ = 2.0
	}
	if req.ExitZ == 0 {
		req.ExitZ = 0.5
	}

	params := domain.AnalyticsParams{
		SymbolX: req.SymbolX,
		SymbolY: req.SymbolY,
		Estimator: domain.EstimatorConfig{
			Method: domain.EstimatorMethod(req.Method),
			Window: req.Window,
			Delta:  req.Delta,
			R:      req.R,
		},
		EntryZ: req.EntryZ,
		ExitZ:  req.ExitZ,
	}

	report, err := s.engine.Run(params)
	if err != nil {
		if errors.Is(err, estimator.ErrUnknownMethod) || errors.Is(err, estimator.ErrInvalidWindow) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
