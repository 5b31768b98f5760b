// Package handler contains the HTTP/JSON surface of the travel planner.
//
// Handlers decode the request, run one store operation and encode the
// result. Every error goes through writeError so the sentinel → status
// mapping lives in one place.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/internal/service"
)

// Register mounts every planner route on r.
func Register(r *mux.Router, plans *PlanHandler, schedule *ScheduleHandler, catalog *CatalogHandler, extras *ExtrasHandler) {
	// Plans
	r.HandleFunc("/plans", plans.ListPlans).Methods(http.MethodGet)
	r.HandleFunc("/plans", plans.CreatePlan).Methods(http.MethodPost)
	r.HandleFunc("/plans/{id}", plans.DeletePlan).Methods(http.MethodDelete)
	r.HandleFunc("/plans/{id}/activate", plans.ActivatePlan).Methods(http.MethodPost)

	// Active plan
	r.HandleFunc("/plan", plans.GetActivePlan).Methods(http.MethodGet)
	r.HandleFunc("/plan/template", plans.ApplyTemplate).Methods(http.MethodPost)
	r.HandleFunc("/plan/days", plans.AddDay).Methods(http.MethodPost)
	r.HandleFunc("/plan/days/{day:[0-9]+}", plans.DeleteDay).Methods(http.MethodDelete)

	// Schedule edits
	r.HandleFunc("/plan/days/{day:[0-9]+}", schedule.GetDay).Methods(http.MethodGet)
	r.HandleFunc("/plan/days/{day:[0-9]+}/{slot}", schedule.InsertItem).Methods(http.MethodPost)
	r.HandleFunc("/plan/days/{day:[0-9]+}/{slot}/quickfill", schedule.QuickFill).Methods(http.MethodPost)
	r.HandleFunc("/plan/days/{day:[0-9]+}/{slot}/{index:[0-9]+}", schedule.UpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/plan/days/{day:[0-9]+}/{slot}/{index:[0-9]+}", schedule.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/plan/move", schedule.MoveItem).Methods(http.MethodPost)

	// Drag and drop
	r.HandleFunc("/drag/start", schedule.DragStart).Methods(http.MethodPost)
	r.HandleFunc("/drag/drop", schedule.DragDrop).Methods(http.MethodPost)
	r.HandleFunc("/drag/abort", schedule.DragAbort).Methods(http.MethodPost)

	// Catalog
	r.HandleFunc("/catalog", catalog.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/templates", catalog.ListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/custom-items", catalog.ListCustomItems).Methods(http.MethodGet)
	r.HandleFunc("/custom-items", catalog.AddCustomItem).Methods(http.MethodPost)

	// Budget, checklist, creators, backup
	r.HandleFunc("/budget", extras.GetBudget).Methods(http.MethodGet)
	r.HandleFunc("/budget/limit", extras.SetBudgetLimit).Methods(http.MethodPut)
	r.HandleFunc("/checklist", extras.AddChecklistItem).Methods(http.MethodPost)
	r.HandleFunc("/checklist/{id}/toggle", extras.ToggleChecklistItem).Methods(http.MethodPost)
	r.HandleFunc("/checklist/{id}", extras.RemoveChecklistItem).Methods(http.MethodDelete)
	r.HandleFunc("/creators/{id}/toggle", extras.ToggleCreator).Methods(http.MethodPost)
	r.HandleFunc("/backup", extras.Export).Methods(http.MethodGet)
	r.HandleFunc("/backup", extras.Import).Methods(http.MethodPost)
}

// ─── Helpers ────────────────────────────────────────────────

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorStatus maps service sentinels to a status code and a short error code.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrUnknownSlot, http.StatusBadRequest, "unknown_slot"},
	{service.ErrInvalidTime, http.StatusBadRequest, "invalid_time"},
	{service.ErrInvalidTransport, http.StatusBadRequest, "invalid_transport"},
	{service.ErrIndexOutOfRange, http.StatusBadRequest, "index_out_of_range"},
	{service.ErrInvalidDayCount, http.StatusBadRequest, "invalid_day_count"},
	{service.ErrInvalidBackup, http.StatusBadRequest, "invalid_backup"},
	{service.ErrDayNotFound, http.StatusNotFound, "day_not_found"},
	{service.ErrPlanNotFound, http.StatusNotFound, "plan_not_found"},
	{service.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{service.ErrTemplateNotFound, http.StatusNotFound, "template_not_found"},
	{service.ErrChecklistItem, http.StatusNotFound, "checklist_item_not_found"},
	{service.ErrLastDay, http.StatusConflict, "last_day"},
	{service.ErrLastPlan, http.StatusConflict, "last_plan"},
	{service.ErrNoActiveDrag, http.StatusConflict, "no_active_drag"},
}

// writeError maps err to a JSON error response.
func writeError(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, map[string]string{
				"error":   e.code,
				"message": err.Error(),
			})
			return
		}
	}
	log.Printf("[handler] internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal_error",
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// pathInt reads an integer route variable. Routes constrain these to digits,
// so a failure here means the variable is out of int range.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		badRequest(w, "invalid "+name+": must be an integer")
		return 0, false
	}
	return n, true
}

func pathSlot(r *http.Request) model.Slot {
	return model.Slot(mux.Vars(r)["slot"])
}
