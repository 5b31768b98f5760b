package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/internal/service"
)

// ─── Request/Response DTOs ──────────────────────────────────

// CreatePlanBody is the JSON body for POST /api/v1/plans. With a templateId
// the plan is built from that template and Days is ignored.
type CreatePlanBody struct {
	service.PlanOptions
	TemplateID string `json:"templateId,omitempty"`
}

// ApplyTemplateBody is the JSON body for POST /api/v1/plan/template.
type ApplyTemplateBody struct {
	TemplateID string `json:"templateId"`
}

// PlansResponse lists every plan and says which one is active.
type PlansResponse struct {
	Plans        []model.Plan `json:"plans"`
	ActivePlanID string       `json:"activePlanId"`
}

// ─── PlanHandler ────────────────────────────────────────────

// PlanHandler handles the plan collection and day structure of the active
// plan.
type PlanHandler struct {
	store   *service.PlanStore
	engine  *service.ScheduleEngine
	catalog *service.CatalogService
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(store *service.PlanStore, engine *service.ScheduleEngine, catalog *service.CatalogService) *PlanHandler {
	return &PlanHandler{store: store, engine: engine, catalog: catalog}
}

// ListPlans handles GET /api/v1/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PlansResponse{
		Plans:        h.store.Plans(),
		ActivePlanID: h.store.ActivePlan().ID,
	})
}

// CreatePlan handles POST /api/v1/plans
//
//	Request body:
//	{ "name": "Spring in Taipei", "startDate": "2026-03-01", "days": 4, "region": "taipei" }
//	or
//	{ "templateId": "taipei-weekend", "startDate": "2026-03-01" }
//
// The new plan becomes active.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var body CreatePlanBody
	if !decodeBody(w, r, &body) {
		return
	}

	var (
		plan model.Plan
		err  error
	)
	if body.TemplateID != "" {
		tpl, terr := h.catalog.Template(body.TemplateID)
		if terr != nil {
			writeError(w, terr)
			return
		}
		plan, err = h.store.CreatePlanFromTemplate(tpl, body.PlanOptions)
	} else {
		plan, err = h.store.CreatePlan(body.PlanOptions)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// DeletePlan handles DELETE /api/v1/plans/{id}
//
// Response codes:
//
//	204  Deleted
//	404  No such plan
//	409  It is the last plan
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePlan(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivatePlan handles POST /api/v1/plans/{id}/activate
func (h *PlanHandler) ActivatePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SetActivePlan(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.ActivePlan())
}

// GetActivePlan handles GET /api/v1/plan
func (h *PlanHandler) GetActivePlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ActivePlan())
}

// ApplyTemplate handles POST /api/v1/plan/template
//
// Replaces the active plan's schedule with a copy of the template.
func (h *PlanHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var body ApplyTemplateBody
	if !decodeBody(w, r, &body) {
		return
	}
	tpl, err := h.catalog.Template(body.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}

	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		return h.engine.ApplyTemplate(p, tpl)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// AddDay handles POST /api/v1/plan/days
func (h *PlanHandler) AddDay(w http.ResponseWriter, r *http.Request) {
	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		return service.AddDay(p), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeleteDay handles DELETE /api/v1/plan/days/{day}
//
// Later days are renumbered down by one.
func (h *PlanHandler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		return service.DeleteDay(p, day)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
