package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/internal/service"
)

// ─── Request DTOs ───────────────────────────────────────────

// BudgetLimitBody is the JSON body for PUT /api/v1/budget/limit.
type BudgetLimitBody struct {
	Limit float64 `json:"limit"`
}

// ChecklistBody is the JSON body for POST /api/v1/checklist.
type ChecklistBody struct {
	Text string `json:"text"`
}

// ─── ExtrasHandler ──────────────────────────────────────────

// ExtrasHandler handles the budget view, the checklist, creator
// subscriptions and backup export/import.
type ExtrasHandler struct {
	store *service.PlanStore
}

// NewExtrasHandler creates a new extras handler.
func NewExtrasHandler(store *service.PlanStore) *ExtrasHandler {
	return &ExtrasHandler{store: store}
}

// GetBudget handles GET /api/v1/budget
//
// Summarises the active plan: total, per-category breakdown, per-day totals
// and the converted amount.
func (h *ExtrasHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Budget())
}

// SetBudgetLimit handles PUT /api/v1/budget/limit
//
// A limit of 0 clears it.
func (h *ExtrasHandler) SetBudgetLimit(w http.ResponseWriter, r *http.Request) {
	var body BudgetLimitBody
	if !decodeBody(w, r, &body) {
		return
	}
	h.store.SetBudgetLimit(body.Limit)
	writeJSON(w, http.StatusOK, h.store.Budget())
}

// AddChecklistItem handles POST /api/v1/checklist
func (h *ExtrasHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var body ChecklistBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		badRequest(w, "text is required")
		return
	}
	item, err := h.store.AddChecklistItem(body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ToggleChecklistItem handles POST /api/v1/checklist/{id}/toggle
func (h *ExtrasHandler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.ToggleChecklistItem(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveChecklistItem handles DELETE /api/v1/checklist/{id}
func (h *ExtrasHandler) RemoveChecklistItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveChecklistItem(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCreator handles POST /api/v1/creators/{id}/toggle
func (h *ExtrasHandler) ToggleCreator(w http.ResponseWriter, r *http.Request) {
	subscribed := h.store.ToggleCreator(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed})
}

// Export handles GET /api/v1/backup
//
// Sent as a download named after the export date.
func (h *ExtrasHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("travel-plans-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, http.StatusOK, h.store.Export())
}

// Import handles POST /api/v1/backup
//
// The document replaces every plan. It is validated as a whole; on any
// problem nothing changes and 400 is returned.
func (h *ExtrasHandler) Import(w http.ResponseWriter, r *http.Request) {
	var backup model.Backup
	if !decodeBody(w, r, &backup) {
		return
	}
	if err := h.store.Import(backup); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlansResponse{
		Plans:        h.store.Plans(),
		ActivePlanID: h.store.ActivePlan().ID,
	})
}
