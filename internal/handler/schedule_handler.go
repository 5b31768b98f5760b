package handler

import (
	"fmt"
	"net/http"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/internal/service"
)

// ─── Request/Response DTOs ──────────────────────────────────

// InsertItemBody is the JSON body for POST /api/v1/plan/days/{day}/{slot}.
// Either ItemID names a catalog or custom item, or Item carries one inline.
type InsertItemBody struct {
	ItemID           string              `json:"itemId,omitempty"`
	Item             *model.TravelItem   `json:"item,omitempty"`
	StartTime        string              `json:"startTime,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	ArrivalTransport model.TransportMode `json:"arrivalTransport,omitempty"`
}

// MoveItemBody is the JSON body for POST /api/v1/plan/move.
type MoveItemBody struct {
	FromDay int        `json:"fromDay"`
	Slot    model.Slot `json:"slot"`
	Index   int        `json:"index"`
	ToDay   int        `json:"toDay"`
	ToSlot  model.Slot `json:"toSlot"`
}

// DragStartBody is the JSON body for POST /api/v1/drag/start.
type DragStartBody struct {
	Source service.DragOrigin `json:"source"`

	// Catalog source.
	ItemID string `json:"itemId,omitempty"`

	// Canvas source.
	Day   int        `json:"day,omitempty"`
	Slot  model.Slot `json:"slot,omitempty"`
	Index int        `json:"index,omitempty"`
}

// DropBody is the JSON body for POST /api/v1/drag/drop.
type DropBody struct {
	Day  int        `json:"day"`
	Slot model.Slot `json:"slot"`
}

// ItemResponse is returned by insert and update.
type ItemResponse struct {
	Placement service.Placement  `json:"placement"`
	Item      model.ScheduleItem `json:"item"`
}

// QuickFillResponse reports whether quick-fill found something to add.
type QuickFillResponse struct {
	Filled    bool                `json:"filled"`
	Placement *service.Placement  `json:"placement,omitempty"`
	Item      *model.ScheduleItem `json:"item,omitempty"`
}

// DayView is one day with its display annotations.
type DayView struct {
	Day       int                `json:"day"`
	Schedule  model.DaySchedule  `json:"schedule"`
	Conflicts []service.Conflict `json:"conflicts"`
	Flagged   map[string]bool    `json:"flagged"`
	Route     service.DayRoute   `json:"route"`
}

// ─── ScheduleHandler ────────────────────────────────────────

// ScheduleHandler handles item-level edits of the active plan.
type ScheduleHandler struct {
	store   *service.PlanStore
	engine  *service.ScheduleEngine
	catalog *service.CatalogService
	drag    *service.DragCoordinator
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(store *service.PlanStore, engine *service.ScheduleEngine, catalog *service.CatalogService, drag *service.DragCoordinator) *ScheduleHandler {
	return &ScheduleHandler{store: store, engine: engine, catalog: catalog, drag: drag}
}

// lookupItem resolves an item id against the catalog, then custom items.
func (h *ScheduleHandler) lookupItem(id string) (model.TravelItem, error) {
	if item, ok := h.catalog.Item(id); ok {
		return item, nil
	}
	if item, ok := h.store.CustomItem(id); ok {
		return item, nil
	}
	return model.TravelItem{}, fmt.Errorf("%w: catalog item %s", service.ErrItemNotFound, id)
}

func itemAt(plan model.Plan, p service.Placement) model.ScheduleItem {
	ds, _ := plan.Day(p.Day)
	return ds.Items(p.Slot)[p.Index]
}

// GetDay handles GET /api/v1/plan/days/{day}
//
// Returns the day's schedule with overlap conflicts and the suggested route.
func (h *ScheduleHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	plan := h.store.ActivePlan()
	ds, found := plan.Day(day)
	if !found {
		writeError(w, fmt.Errorf("%w: day %d of %d", service.ErrDayNotFound, day, plan.TotalDays))
		return
	}
	conflicts := service.DayConflicts(ds)
	writeJSON(w, http.StatusOK, DayView{
		Day:       day,
		Schedule:  ds,
		Conflicts: conflicts,
		Flagged:   service.ConflictIDs(conflicts),
		Route:     service.RouteForDay(ds),
	})
}

// InsertItem handles POST /api/v1/plan/days/{day}/{slot}
//
//	Request body:
//	{ "itemId": "tpe-101", "startTime": "14:00" }
//
// A timed item lands in the slot its start time belongs to, which may differ
// from the slot in the path. The response says where it went.
func (h *ScheduleHandler) InsertItem(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	var body InsertItemBody
	if !decodeBody(w, r, &body) {
		return
	}

	var src model.TravelItem
	switch {
	case body.Item != nil:
		src = *body.Item
	case body.ItemID != "":
		item, err := h.lookupItem(body.ItemID)
		if err != nil {
			writeError(w, err)
			return
		}
		src = item
	default:
		badRequest(w, "itemId or item is required")
		return
	}

	item := model.NewScheduleItem(src)
	item.StartTime = body.StartTime
	item.Notes = body.Notes
	item.ArrivalTransport = body.ArrivalTransport

	var placement service.Placement
	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, pl, err := h.engine.Insert(p, day, pathSlot(r), item)
		placement = pl
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemResponse{Placement: placement, Item: itemAt(plan, placement)})
}

// UpdateItem handles PATCH /api/v1/plan/days/{day}/{slot}/{index}
//
//	Request body (every field optional):
//	{ "startTime": "18:30", "notes": "book ahead", "arrivalTransport": "walk" }
//
// "startTime": "" clears the time and keeps the item in its slot.
func (h *ScheduleHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	var patch service.ItemPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	var placement service.Placement
	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, pl, err := h.engine.Update(p, day, pathSlot(r), index, patch)
		placement = pl
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Placement: placement, Item: itemAt(plan, placement)})
}

// RemoveItem handles DELETE /api/v1/plan/days/{day}/{slot}/{index}
func (h *ScheduleHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}

	var removed model.ScheduleItem
	_, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, item, err := h.engine.Remove(p, day, pathSlot(r), index)
		removed = item
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

// MoveItem handles POST /api/v1/plan/move
//
//	Request body:
//	{ "fromDay": 1, "slot": "morning", "index": 0, "toDay": 2, "toSlot": "evening" }
//
// "timeCleared": true in the response means the item lost its start time.
func (h *ScheduleHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var body MoveItemBody
	if !decodeBody(w, r, &body) {
		return
	}

	var res service.MoveResult
	_, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, mv, err := h.engine.MoveCrossDay(p, body.FromDay, body.Slot, body.Index, body.ToDay, body.ToSlot)
		res = mv
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// QuickFill handles POST /api/v1/plan/days/{day}/{slot}/quickfill
//
// Nothing to suggest is not an error: the response is 200 with
// "filled": false and the plan is unchanged.
func (h *ScheduleHandler) QuickFill(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}

	var placement *service.Placement
	plan, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, pl, err := h.engine.QuickFill(p, day, pathSlot(r))
		if err == nil && pl == nil {
			return p, service.ErrNoChange
		}
		placement = pl
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if placement == nil {
		writeJSON(w, http.StatusOK, QuickFillResponse{Filled: false})
		return
	}
	item := itemAt(plan, *placement)
	writeJSON(w, http.StatusOK, QuickFillResponse{Filled: true, Placement: placement, Item: &item})
}

// ─── Drag and drop ──────────────────────────────────────────

// DragStart handles POST /api/v1/drag/start
//
//	{ "source": "catalog", "itemId": "tpe-raohe" }
//	{ "source": "canvas", "day": 1, "slot": "night", "index": 0 }
func (h *ScheduleHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var body DragStartBody
	if !decodeBody(w, r, &body) {
		return
	}

	switch body.Source {
	case service.OriginCatalog:
		item, err := h.lookupItem(body.ItemID)
		if err != nil {
			writeError(w, err)
			return
		}
		h.drag.BeginFromCatalog(item)
	case service.OriginCanvas:
		if err := h.drag.BeginFromCanvas(h.store.ActivePlan(), body.Day, body.Slot, body.Index); err != nil {
			writeError(w, err)
			return
		}
	default:
		badRequest(w, "source must be 'catalog' or 'canvas'")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": h.drag.State().String()})
}

// DragDrop handles POST /api/v1/drag/drop
//
//	{ "day": 2, "slot": "afternoon" }
//
// A rejected drop leaves the drag armed so the client can retry elsewhere.
func (h *ScheduleHandler) DragDrop(w http.ResponseWriter, r *http.Request) {
	var body DropBody
	if !decodeBody(w, r, &body) {
		return
	}

	var res service.DropResult
	_, err := h.store.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		out, dr, err := h.drag.Drop(p, body.Day, body.Slot)
		res = dr
		return out, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DragAbort handles POST /api/v1/drag/abort
func (h *ScheduleHandler) DragAbort(w http.ResponseWriter, r *http.Request) {
	h.drag.Abort()
	writeJSON(w, http.StatusOK, map[string]string{"state": h.drag.State().String()})
}
