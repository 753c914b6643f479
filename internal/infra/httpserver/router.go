package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalyst "github.com/bryanwahyu/aicomply/internal/application/analyst"
	appscans "github.com/bryanwahyu/aicomply/internal/application/scans"
	domai "github.com/bryanwahyu/aicomply/internal/domain/ai"
	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
	"github.com/bryanwahyu/aicomply/internal/middleware"
)

type Router struct {
	scansSvc   *appscans.Service
	analystSvc *appanalyst.Service
}

func NewRouter(scansSvc *appscans.Service, analystSvc *appanalyst.Service, health map[string]middleware.HealthChecker) http.Handler {
	r := &Router{scansSvc: scansSvc, analystSvc: analystSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(health))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/scans", r.wrap(r.handleStartScan))
		rt.Get("/scans/latest", r.wrap(r.handleLatest))
		rt.Get("/scans/{id}", r.wrap(r.handleGetScan))
		rt.Post("/scans/{id}/analyzers", r.wrap(r.handleRunAnalyzers))
		rt.Post("/scans/{id}/cancel", r.wrap(r.handleCancel))
		rt.Get("/scans/{id}/findings", r.wrap(r.handleFindings))
		rt.Get("/scans/{id}/coverage", r.wrap(r.handleCoverage))
		rt.Get("/scans/{id}/evidence", r.wrap(r.handleEvidenceList))
		rt.Get("/scans/{id}/evidence/{eid}", r.wrap(r.handleEvidenceGet))
		rt.Get("/scans/{id}/errors", r.wrap(r.handleAnalyzerErrors))
		rt.Get("/scans/{id}/analysis", r.wrap(r.handleAnalysisLatest))
		rt.Post("/ai/analyze", r.wrap(r.handleAIAnalyze))
		rt.Get("/ai/analyze", r.wrap(r.handleAIAnalyzeList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequestError
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, domain.ErrCorruptArtifact), errors.Is(err, appscans.ErrUnknownAnalyzer):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrCancelled):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func tenantParam(req *http.Request) (string, error) {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return "", badRequest("%v", err)
	}
	return tenant, nil
}

// POST /v1/{tenant}/scans
// Body: {"bundle": {"type": "code", "key": "uploads/model-v3.zip", ...}}
func (r *Router) handleStartScan(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	var body struct {
		Bundle struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			Key    string `json:"key"`
			SHA256 string `json:"sha256"`
			Size   int64  `json:"size"`
		} `json:"bundle"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid body: %v", err)
	}
	if err := middleware.ValidateArtifactKey(body.Bundle.Key); err != nil {
		return badRequest("%v", err)
	}
	if body.Bundle.Type == "" {
		body.Bundle.Type = string(artifacts.TypeCode)
	}

	ref := artifacts.Ref{
		ID:     body.Bundle.ID,
		Type:   artifacts.Type(body.Bundle.Type),
		Key:    body.Bundle.Key,
		SHA256: body.Bundle.SHA256,
		Size:   body.Bundle.Size,
	}
	middleware.IncrementScans()
	scan, err := r.scansSvc.StartScan(req.Context(), tenant, ref)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, scan)
}

// POST /v1/{tenant}/scans/{id}/analyzers
// Body: {"analyzers": ["deps", "bandit"]}
func (r *Router) handleRunAnalyzers(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")

	var body struct {
		Analyzers []string `json:"analyzers"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid body: %v", err)
	}
	if len(body.Analyzers) == 0 {
		return badRequest("analyzers is required")
	}

	middleware.IncrementAnalyzerRuns()
	states, err := r.scansSvc.RunAnalyzers(req.Context(), tenant, domain.ScanID(id), body.Analyzers)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, map[string]any{"scan_id": id, "jobs": states})
}

// GET /v1/{tenant}/scans/{id}
func (r *Router) handleGetScan(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := domain.ScanID(chi.URLParam(req, "id"))

	scan, err := r.scansSvc.GetScan(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	jobs, err := r.scansSvc.Jobs(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"scan": scan, "jobs": jobs})
}

// GET /v1/{tenant}/scans/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /v1/{tenant}/scans/{id}/cancel
func (r *Router) handleCancel(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := domain.ScanID(chi.URLParam(req, "id"))
	if err := r.scansSvc.CancelScan(req.Context(), tenant, id); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"scan_id": string(id), "status": "cancelled"})
}

// GET /v1/{tenant}/scans/{id}/findings
func (r *Router) handleFindings(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	fs, err := r.scansSvc.GetFindings(req.Context(), tenant, domain.ScanID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, fs)
}

// GET /v1/{tenant}/scans/{id}/coverage
func (r *Router) handleCoverage(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	stats, err := r.scansSvc.GetCoverage(req.Context(), tenant, domain.ScanID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stats)
}

// GET /v1/{tenant}/scans/{id}/evidence
func (r *Router) handleEvidenceList(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	evs, err := r.scansSvc.ListEvidence(req.Context(), tenant, domain.ScanID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, evs)
}

// GET /v1/{tenant}/scans/{id}/evidence/{eid}
func (r *Router) handleEvidenceGet(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	ev, err := r.scansSvc.GetEvidence(req.Context(), tenant,
		domain.ScanID(chi.URLParam(req, "id")), chi.URLParam(req, "eid"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, ev)
}

// GET /v1/{tenant}/scans/{id}/errors?limit=20
func (r *Router) handleAnalyzerErrors(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.AnalyzerErrors(req.Context(), tenant,
		domain.ScanID(chi.URLParam(req, "id")), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/scans/{id}/analysis
func (r *Router) handleAnalysisLatest(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	a, err := r.analystSvc.LatestByScan(req.Context(), tenant, chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("%w: no analysis for scan", domain.ErrNotFound)
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/ai/analyze
// Body: {"scan_id": "<id>"}
func (r *Router) handleAIAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	var body struct {
		ScanID string `json:"scan_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid body: %v", err)
	}
	if body.ScanID == "" {
		return badRequest("scan_id is required")
	}

	a, err := r.analystSvc.AnalyzeAndStore(req.Context(), tenant, domain.ScanID(body.ScanID))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/ai/analyze?page=&page_size=
func (r *Router) handleAIAnalyzeList(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.analystSvc.ListAnalyses(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
