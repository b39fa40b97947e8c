/*
handlers.go - HTTP API handlers for the compensation engine

PURPOSE:
  Exposes the calculation engine and launch-record workflow via REST.
  Handles HTTP request/response and JSON mapping, delegates everything
  else to the engine.

RECONCILIATION CONTRACT:
  Listing and summary handlers NEVER return or sum raw record sets.
  Every read of a worker's history goes through engine.Reconcile
  first; the raw rows stay an implementation detail of the store.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid input (bad mode, hours <= 0, malformed date)
  - 404: record not found
  - 409: illegal status transition
  - 500: internal errors

SEE ALSO:
  - dto.go:    request/response structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/comp-engine/catalog"
	"github.com/warp/comp-engine/engine"
	"github.com/warp/comp-engine/taskmatch"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  engine.LaunchStore
	Config engine.Config

	// catalog is swapped atomically on hot reload; each request works
	// against the snapshot it grabbed.
	mu  sync.RWMutex
	cat *catalog.Catalog
}

// NewHandler creates a handler over a store and a catalog snapshot.
func NewHandler(store engine.LaunchStore, cat *catalog.Catalog, cfg engine.Config) *Handler {
	return &Handler{Store: store, Config: cfg, cat: cat}
}

// Catalog returns the current catalog snapshot.
func (h *Handler) Catalog() *catalog.Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cat
}

// SetCatalog swaps in a freshly loaded snapshot (called by the
// catalog watcher). In-flight requests keep the snapshot they hold.
func (h *Handler) SetCatalog(cat *catalog.Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cat = cat
}

func (h *Handler) assembler() engine.Assembler {
	return engine.NewAssembler(h.Catalog(), h.Config)
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes a breakdown without persisting anything.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := req.toShiftInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	bd, err := h.assembler().Assemble(in)
	recordCalculation(in.TaskMode(), err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBreakdownDTO(*bd))
}

// =============================================================================
// LAUNCH WORKFLOW
// =============================================================================

// CreateLaunch computes a breakdown and persists it as a new pending
// record.
// POST /api/launches
func (h *Handler) CreateLaunch(w http.ResponseWriter, r *http.Request) {
	var req CreateLaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "worker_id is required", nil)
		return
	}

	in, err := req.toShiftInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	bd, err := h.assembler().Assemble(in)
	recordCalculation(in.TaskMode(), err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	rec := engine.LaunchRecord{
		WorkerID:  engine.WorkerID(req.WorkerID),
		Date:      in.Date,
		Input:     in,
		Breakdown: *bd,
	}
	if err := h.Store.Create(r.Context(), &rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create launch record", err)
		return
	}

	launchesCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, toLaunchDTO(rec))
}

// GetLaunch returns one raw record by ID.
// GET /api/launches/{id}
func (h *Handler) GetLaunch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLaunchDTO(*rec))
}

// EditLaunch recalculates a record from admin-supplied input and marks
// it edited_admin. The row is rewritten in place; no new record is
// created and the approval status does not change.
// PUT /api/launches/{id}
func (h *Handler) EditLaunch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req EditLaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EditedBy == "" {
		writeError(w, http.StatusBadRequest, "edited_by is required", nil)
		return
	}

	in, err := req.toShiftInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	bd, err := h.assembler().Assemble(in)
	recordCalculation(in.TaskMode(), err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if err := h.Store.ApplyEdit(r.Context(), id, in, *bd, req.EditedBy, time.Now()); err != nil {
		writeEngineError(w, err)
		return
	}

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLaunchDTO(*rec))
}

// ApproveLaunch transitions a pending record to approved.
// POST /api/launches/{id}/approve
func (h *Handler) ApproveLaunch(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, engine.StatusApproved)
}

// RejectLaunch transitions a pending record to rejected. Rejected
// records drop out of reconciled history; the worker may launch a new
// record for the same date.
// POST /api/launches/{id}/reject
func (h *Handler) RejectLaunch(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, engine.StatusRejected)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status engine.Status) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.Store.SetStatus(r.Context(), id, status); err != nil {
		writeEngineError(w, err)
		return
	}

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLaunchDTO(*rec))
}

// =============================================================================
// HISTORY (always reconciled)
// =============================================================================

// ListLaunches returns the worker's canonical history: exactly one
// record per date, admin edits winning over originals, rejected
// records absent.
// GET /api/workers/{id}/launches?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListLaunches(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	records, err := h.Store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list launch records", err)
		return
	}

	reconcileRunsTotal.Inc()
	writeJSON(w, http.StatusOK, toLaunchDTOs(engine.Reconcile(records)))
}

// GetSummary returns the worker's monthly total over canonical
// history.
// GET /api/workers/{id}/summary?month=YYYY-MM
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	workerID := chi.URLParam(r, "id")
	month := r.URL.Query().Get("month")

	start, err := time.Parse("2006-01", month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	end := start.AddDate(0, 1, -1)

	records, err := h.Store.List(r.Context(), engine.LaunchFilter{
		WorkerID: engine.WorkerID(workerID),
		From:     start,
		To:       end,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list launch records", err)
		return
	}

	reconcileRunsTotal.Inc()
	canonical := engine.Reconcile(records)
	writeJSON(w, http.StatusOK, SummaryDTO{
		WorkerID: workerID,
		Month:    month,
		Days:     len(canonical),
		Total:    f64(engine.ReconciledTotal(records)),
	})
}

// =============================================================================
// CATALOG & ELIGIBILITY
// =============================================================================

// ListActivities returns the activity tier tables.
// GET /api/catalog/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toActivityDTOs(h.Catalog().Activities))
}

// ListKPIs returns every KPI definition.
// GET /api/catalog/kpis
func (h *Handler) ListKPIs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toKPIDTOs(h.Catalog().KPIs))
}

// ListTaskTypes returns the task-type target durations.
// GET /api/catalog/task-types
func (h *Handler) ListTaskTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog().TaskTypes)
}

// AvailableKPIs returns the active KPIs for a function/shift. The UI
// calls this whenever either field changes.
// GET /api/kpis/available?function=...&shift=...
func (h *Handler) AvailableKPIs(w http.ResponseWriter, r *http.Request) {
	function := r.URL.Query().Get("function")
	shift := r.URL.Query().Get("shift")
	if function == "" || shift == "" {
		writeError(w, http.StatusBadRequest, "function and shift are required", nil)
		return
	}
	writeJSON(w, http.StatusOK, toKPIDTOs(h.Catalog().AvailableKPIs(function, shift)))
}

// PreviewTasks runs the task matcher on an export without persisting.
// POST /api/tasks/preview
func (h *Handler) PreviewTasks(w http.ResponseWriter, r *http.Request) {
	var req TaskPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OperatorName == "" {
		writeError(w, http.StatusBadRequest, "operator_name is required", nil)
		return
	}

	matcher := taskmatch.Matcher{
		Targets: h.Catalog().TaskTargets(),
		Rate:    h.Config.ValidTaskRate,
	}
	res := matcher.MatchExport(req.ValidTaskExport, req.OperatorName)

	writeJSON(w, http.StatusOK, TaskPreviewDTO{
		ValidTaskCount: res.ValidCount,
		ValidTaskValue: f64(res.Value),
		TaskBreakdown:  res.PerType,
		Degraded:       res.Degraded,
		Reason:         res.Reason,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record id", err)
		return 0, false
	}
	return id, true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (engine.LaunchFilter, bool) {
	filter := engine.LaunchFilter{WorkerID: engine.WorkerID(chi.URLParam(r, "id"))}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return filter, false
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return filter, false
		}
		filter.To = t
	}
	return filter, true
}

// writeEngineError maps engine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, engine.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid status transition", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
