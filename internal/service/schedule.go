package service

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/pkg/timeutil"
)

// ─── Types ──────────────────────────────────────────────────

// Placement says where an item ended up after an engine operation.
type Placement struct {
	Day        int        `json:"day"`
	Slot       model.Slot `json:"slot"`
	Index      int        `json:"index"`
	InstanceID string     `json:"instanceId"`
}

// ItemPatch is a partial update of a ScheduleItem. Nil fields are left alone.
// A non-nil empty StartTime clears the time.
type ItemPatch struct {
	StartTime        *string              `json:"startTime,omitempty"`
	Notes            *string              `json:"notes,omitempty"`
	ArrivalTransport *model.TransportMode `json:"arrivalTransport,omitempty"`
	Title            *string              `json:"title,omitempty"`
	Duration         *string              `json:"duration,omitempty"`
	Price            *model.Price         `json:"price,omitempty"`
}

// MoveResult is returned by MoveCrossDay.
type MoveResult struct {
	Placement
	// TimeCleared is set when the item landed in a different slot type and
	// lost its start time. The caller should prompt for a new one.
	TimeCleared bool `json:"timeCleared"`
}

// ─── ScheduleEngine ─────────────────────────────────────────

// ScheduleEngine owns every mutation of a plan's day schedules.
//
// All operations are copy-on-write: they take a Plan and return a new Plan.
// Day buckets that change are fresh slices; the input plan is never written.
// On error the input plan is returned untouched.
type ScheduleEngine struct {
	// NewID generates instance ids. Defaults to random UUIDs.
	NewID func() string

	// Pick chooses one of n quick-fill candidates. Defaults to uniform random.
	Pick func(n int) int

	suggestions SuggestionSource
}

// NewScheduleEngine creates an engine that quick-fills from suggestions.
func NewScheduleEngine(suggestions SuggestionSource) *ScheduleEngine {
	return &ScheduleEngine{
		NewID:       uuid.NewString,
		Pick:        rand.Intn,
		suggestions: suggestions,
	}
}

// Insert appends item to slot of the given day and re-sorts.
//
// A present start time in a timed slot re-buckets the item into the slot its
// time belongs to. The item gets a fresh instance id unless it already has one
// that is unused in the plan.
func (e *ScheduleEngine) Insert(plan model.Plan, day int, slot model.Slot, item model.ScheduleItem) (model.Plan, Placement, error) {
	if !slot.Valid() {
		return plan, Placement{}, fmt.Errorf("insert: %w: %q", ErrUnknownSlot, slot)
	}
	ds, err := dayOf(plan, day)
	if err != nil {
		return plan, Placement{}, fmt.Errorf("insert: %w", err)
	}

	item = item.Clone()
	if err := normalizeItem(&item); err != nil {
		return plan, Placement{}, fmt.Errorf("insert: %w", err)
	}
	if item.InstanceID == "" || instanceExists(plan, item.InstanceID) {
		item.InstanceID = e.NewID()
	}

	target := slot
	if slot.Timed() && item.StartTime != "" {
		target, _ = CanonicalSlot(item.StartTime)
	}

	items, idx := insertSorted(ds.Items(target), target, item)
	out := plan.ShallowCopy()
	out.Schedule[model.DayKey(day)] = ds.WithItems(target, items)

	if target != slot {
		log.Printf("[schedule] %s at %s re-bucketed %s → %s (day %d)",
			item.InstanceID, item.StartTime, slot, target, day)
	}
	return out, Placement{Day: day, Slot: target, Index: idx, InstanceID: item.InstanceID}, nil
}

// Remove deletes the item at index from slot.
func (e *ScheduleEngine) Remove(plan model.Plan, day int, slot model.Slot, index int) (model.Plan, model.ScheduleItem, error) {
	ds, items, err := slotOf(plan, day, slot, index)
	if err != nil {
		return plan, model.ScheduleItem{}, fmt.Errorf("remove: %w", err)
	}

	removed := items[index]
	out := plan.ShallowCopy()
	out.Schedule[model.DayKey(day)] = ds.WithItems(slot, removeAt(items, index))
	return out, removed, nil
}

// Update merges patch into the item at index.
//
// When the patch carries a start time and slot is a timed slot, the item moves
// to the slot that time belongs to (same day). A cleared time keeps the item
// where it is. The affected slots are re-sorted.
func (e *ScheduleEngine) Update(plan model.Plan, day int, slot model.Slot, index int, patch ItemPatch) (model.Plan, Placement, error) {
	ds, items, err := slotOf(plan, day, slot, index)
	if err != nil {
		return plan, Placement{}, fmt.Errorf("update: %w", err)
	}

	item := items[index].Clone()
	if err := applyPatch(&item, patch); err != nil {
		return plan, Placement{}, fmt.Errorf("update: %w", err)
	}

	target := slot
	if patch.StartTime != nil && item.StartTime != "" && slot.Timed() {
		target, _ = CanonicalSlot(item.StartTime)
	}

	var idx int
	if target == slot {
		updated := make([]model.ScheduleItem, len(items))
		copy(updated, items)
		updated[index] = item
		sortSlot(slot, updated)
		idx = indexOf(updated, item.InstanceID)
		ds = ds.WithItems(slot, updated)
	} else {
		ds = ds.WithItems(slot, removeAt(items, index))
		var moved []model.ScheduleItem
		moved, idx = insertSorted(ds.Items(target), target, item)
		ds = ds.WithItems(target, moved)
		log.Printf("[schedule] %s retimed to %s: %s → %s (day %d)",
			item.InstanceID, item.StartTime, slot, target, day)
	}

	out := plan.ShallowCopy()
	out.Schedule[model.DayKey(day)] = ds
	return out, Placement{Day: day, Slot: target, Index: idx, InstanceID: item.InstanceID}, nil
}

// MoveCrossDay detaches the item at (fromDay, slot, index) and appends it to
// (toDay, toSlot), re-sorting the destination. Both days may be the same.
//
// Moving into a different slot type clears the start time; MoveResult tells
// the caller so it can ask for a new one. Identity and catalog fields are
// preserved.
func (e *ScheduleEngine) MoveCrossDay(plan model.Plan, fromDay int, slot model.Slot, index int, toDay int, toSlot model.Slot) (model.Plan, MoveResult, error) {
	if !toSlot.Valid() {
		return plan, MoveResult{}, fmt.Errorf("move: %w: %q", ErrUnknownSlot, toSlot)
	}
	src, items, err := slotOf(plan, fromDay, slot, index)
	if err != nil {
		return plan, MoveResult{}, fmt.Errorf("move: %w", err)
	}
	if _, err := dayOf(plan, toDay); err != nil {
		return plan, MoveResult{}, fmt.Errorf("move: %w", err)
	}

	item := items[index].Clone()
	res := MoveResult{}
	if toSlot != slot && item.StartTime != "" {
		item.StartTime = ""
		res.TimeCleared = true
	}

	out := plan.ShallowCopy()
	out.Schedule[model.DayKey(fromDay)] = src.WithItems(slot, removeAt(items, index))

	// Read the destination after the detach so same-day moves see it.
	dst := out.Schedule[model.DayKey(toDay)]
	moved, idx := insertSorted(dst.Items(toSlot), toSlot, item)
	out.Schedule[model.DayKey(toDay)] = dst.WithItems(toSlot, moved)

	res.Placement = Placement{Day: toDay, Slot: toSlot, Index: idx, InstanceID: item.InstanceID}
	return out, res, nil
}

// QuickFill inserts one suggestion for the plan's region into slot, at the
// slot's default start time.
//
// When there is nothing to suggest the placement is nil and the plan is
// returned unchanged. That is not an error.
func (e *ScheduleEngine) QuickFill(plan model.Plan, day int, slot model.Slot) (model.Plan, *Placement, error) {
	if !slot.Valid() {
		return plan, nil, fmt.Errorf("quick-fill: %w: %q", ErrUnknownSlot, slot)
	}
	ds, err := dayOf(plan, day)
	if err != nil {
		return plan, nil, fmt.Errorf("quick-fill: %w", err)
	}

	var candidates []model.TravelItem
	if e.suggestions != nil {
		candidates = e.suggestions.Suggestions(plan.Region, slot)
	}
	if len(candidates) == 0 {
		log.Printf("[schedule] quick-fill: no suggestions for region=%q slot=%s", plan.Region, slot)
		return plan, nil, nil
	}

	// Prefer something not already on this day.
	fresh := make([]model.TravelItem, 0, len(candidates))
	for _, c := range candidates {
		if !dayHasCatalogItem(ds, c.ID) {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) > 0 {
		candidates = fresh
	}

	pick := candidates[e.Pick(len(candidates))]
	item := model.NewScheduleItem(pick)
	item.StartTime = DefaultStartTime(slot)

	out, placement, err := e.Insert(plan, day, slot, item)
	if err != nil {
		return plan, nil, err
	}
	return out, &placement, nil
}

// Locate finds an item anywhere in the plan by instance id.
func (e *ScheduleEngine) Locate(plan model.Plan, instanceID string) (Placement, bool) {
	for day := 1; day <= plan.TotalDays; day++ {
		ds, ok := plan.Day(day)
		if !ok {
			continue
		}
		for _, slot := range model.Slots {
			if idx := indexOf(ds.Items(slot), instanceID); idx >= 0 {
				return Placement{Day: day, Slot: slot, Index: idx, InstanceID: instanceID}, true
			}
		}
	}
	return Placement{}, false
}

// ─── Helpers ────────────────────────────────────────────────

func dayOf(plan model.Plan, day int) (model.DaySchedule, error) {
	ds, ok := plan.Day(day)
	if !ok {
		return model.DaySchedule{}, fmt.Errorf("%w: day %d of %d", ErrDayNotFound, day, plan.TotalDays)
	}
	return ds, nil
}

func slotOf(plan model.Plan, day int, slot model.Slot, index int) (model.DaySchedule, []model.ScheduleItem, error) {
	if !slot.Valid() {
		return model.DaySchedule{}, nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	ds, err := dayOf(plan, day)
	if err != nil {
		return model.DaySchedule{}, nil, err
	}
	items := ds.Items(slot)
	if index < 0 || index >= len(items) {
		return model.DaySchedule{}, nil, fmt.Errorf("%w: %s[%d] has %d items", ErrIndexOutOfRange, slot, index, len(items))
	}
	return ds, items, nil
}

// insertSorted returns a new slice with item appended and the slot re-sorted,
// plus the item's resulting index.
func insertSorted(items []model.ScheduleItem, slot model.Slot, item model.ScheduleItem) ([]model.ScheduleItem, int) {
	out := make([]model.ScheduleItem, 0, len(items)+1)
	out = append(out, items...)
	out = append(out, item)
	sortSlot(slot, out)
	return out, indexOf(out, item.InstanceID)
}

func removeAt(items []model.ScheduleItem, index int) []model.ScheduleItem {
	out := make([]model.ScheduleItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

func indexOf(items []model.ScheduleItem, instanceID string) int {
	for i := range items {
		if items[i].InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func instanceExists(plan model.Plan, instanceID string) bool {
	for _, ds := range plan.Schedule {
		for _, slot := range model.Slots {
			if indexOf(ds.Items(slot), instanceID) >= 0 {
				return true
			}
		}
	}
	return false
}

func dayHasCatalogItem(ds model.DaySchedule, id string) bool {
	for _, slot := range model.Slots {
		for _, it := range ds.Items(slot) {
			if it.ID == id {
				return true
			}
		}
	}
	return false
}

// normalizeItem validates the mutable fields of a freshly placed item.
func normalizeItem(item *model.ScheduleItem) error {
	if item.StartTime != "" {
		clock, ok := timeutil.NormalizeClock(item.StartTime)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidTime, item.StartTime)
		}
		item.StartTime = clock
	}
	if item.ArrivalTransport != "" && !item.ArrivalTransport.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransport, item.ArrivalTransport)
	}
	return nil
}

func applyPatch(item *model.ScheduleItem, patch ItemPatch) error {
	if patch.StartTime != nil {
		item.StartTime = *patch.StartTime
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	if patch.ArrivalTransport != nil {
		item.ArrivalTransport = *patch.ArrivalTransport
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Duration != nil {
		item.Duration = *patch.Duration
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	return normalizeItem(item)
}

// sortedDayNumbers returns the plan's day numbers in ascending order,
// skipping keys that are not "Day N".
func sortedDayNumbers(plan model.Plan) []int {
	days := make([]int, 0, len(plan.Schedule))
	for key := range plan.Schedule {
		if n, err := model.ParseDayKey(key); err == nil {
			days = append(days, n)
		}
	}
	sort.Ints(days)
	return days
}
