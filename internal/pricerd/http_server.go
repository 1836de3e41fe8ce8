package pricerd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/metrics"
	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricer"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
	maxBodyBytes     = 1 << 20
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	s.mux.HandleFunc("/v1/metrics", s.handleMetrics)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id}
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if runID == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}
	if strings.Contains(runID, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	run, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

type createRunRequest struct {
	RunID          string                 `json:"run_id,omitempty"`
	Wait           bool                   `json:"wait,omitempty"`
	CallbackURL    string                 `json:"callback_url,omitempty"`
	CallbackSecret string          `json:"callback_secret,omitempty"`
	Request        json.RawMessage `json:"request"`
}

// decodePricingRequest strictly decodes raw over a request whose quantity is
// preset, so an omitted quantity defaults and an explicit zero is kept.
func decodePricingRequest(raw json.RawMessage) (models.PricingRequest, error) {
	req := models.PricingRequest{Quantity: models.DefaultQuantity}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return models.PricingRequest{}, err
	}
	return req, nil
}

func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Request) == 0 || string(req.Request) == "null" {
		s.writeError(w, http.StatusBadRequest, "request is required")
		return
	}
	pricing, err := decodePricingRequest(req.Request)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.CallbackURL != "" {
		if u, err := url.Parse(req.CallbackURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			s.writeError(w, http.StatusBadRequest, "callback_url must be an absolute http or https URL")
			return
		}
	}

	run, err := s.Executor.Submit(pricing, SubmitOptions{
		RunID: req.RunID,
		Wait:  req.Wait,
		Callback: Callback{
			URL:    req.CallbackURL,
			Secret: req.CallbackSecret,
		},
	})
	if err != nil {
		// a synchronous pricing failure still leaves a stored run behind
		if run.ID != "" {
			s.writeJSON(w, httpStatus(err), map[string]any{"run": run, "error": err.Error()})
			return
		}
		s.writeError(w, httpStatus(err), err.Error())
		return
	}

	logger.Debug("run accepted (HTTP)", "run_id", run.ID, "wait", req.Wait)
	s.writeJSON(w, http.StatusCreated, map[string]any{"run": run})
}

func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultListLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, maxListLimit)
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var statusFilter models.RunStatus
	if statusStr := query.Get("status"); statusStr != "" {
		parsed, ok := models.ParseRunStatus(statusStr)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+statusStr)
			return
		}
		statusFilter = parsed
	}

	runs := s.store.List(limit, offset, statusFilter)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleMetrics serves the pricing summary. DELETE resets the collector, e.g.
// between benchmark sessions, and returns the empty summary.
func (s *HTTPServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		s.Executor.Collector().Clear()
		logger.Info("metrics cleared")
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, metrics.PricingSummary(s.Executor.Collector()))
}

// httpStatus maps daemon and pricer errors to response codes
func httpStatus(err error) int {
	switch {
	case errors.Is(err, pricer.ErrConfiguration), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrRunIDMissing):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
