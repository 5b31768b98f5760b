package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/shiva/wanderplan/internal/model"
)

// DragOrigin says where a dragged item came from.
type DragOrigin string

const (
	OriginCatalog DragOrigin = "catalog"
	OriginCanvas  DragOrigin = "canvas"
)

// DragState is the lifecycle of the relocation transaction.
//
//	idle → armed → committed | aborted
type DragState int

const (
	DragIdle DragState = iota
	DragArmed
	DragCommitted
	DragAborted
)

func (s DragState) String() string {
	switch s {
	case DragArmed:
		return "armed"
	case DragCommitted:
		return "committed"
	case DragAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// DropResult describes a committed drop.
type DropResult struct {
	Placement
	Origin      DragOrigin `json:"origin"`
	TimeCleared bool       `json:"timeCleared"`
}

// dragTxn is what the coordinator remembers between drag start and drop.
type dragTxn struct {
	origin DragOrigin
	item   model.ScheduleItem

	// Canvas origin only.
	day  int
	slot model.Slot
}

// DragCoordinator holds at most one in-flight relocation and commits it into
// the schedule engine on drop. Arming a new drag replaces the previous one.
type DragCoordinator struct {
	engine *ScheduleEngine

	mu    sync.Mutex
	state DragState
	txn   dragTxn
}

// NewDragCoordinator creates an idle coordinator.
func NewDragCoordinator(engine *ScheduleEngine) *DragCoordinator {
	return &DragCoordinator{engine: engine}
}

// State returns the current transaction state.
func (c *DragCoordinator) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginFromCatalog arms a drag of a catalog entry.
func (c *DragCoordinator) BeginFromCatalog(item model.TravelItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txn = dragTxn{origin: OriginCatalog, item: model.NewScheduleItem(item)}
	c.state = DragArmed
}

// BeginFromCanvas arms a drag of an already placed item. The item is tracked
// by instance id, so later edits that shift its index do not break the drop.
func (c *DragCoordinator) BeginFromCanvas(plan model.Plan, day int, slot model.Slot, index int) error {
	_, items, err := slotOf(plan, day, slot, index)
	if err != nil {
		return fmt.Errorf("drag start: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.txn = dragTxn{origin: OriginCanvas, item: items[index].Clone(), day: day, slot: slot}
	c.state = DragArmed
	return nil
}

// Abort ends the drag without a drop. Committed operations are unaffected.
func (c *DragCoordinator) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DragArmed {
		c.state = DragAborted
		c.txn = dragTxn{}
	}
}

// Drop commits the armed drag onto (day, slot) of plan.
//
// A validation failure leaves the drag armed so the user can drop elsewhere.
// A canvas item that no longer exists aborts the drag.
func (c *DragCoordinator) Drop(plan model.Plan, day int, slot model.Slot) (model.Plan, DropResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragArmed {
		return plan, DropResult{}, ErrNoActiveDrag
	}

	var (
		out model.Plan
		res = DropResult{Origin: c.txn.origin}
	)
	switch c.txn.origin {
	case OriginCatalog:
		var placement Placement
		var err error
		out, placement, err = c.engine.Insert(plan, day, slot, c.txn.item)
		if err != nil {
			return plan, DropResult{}, fmt.Errorf("drop: %w", err)
		}
		res.Placement = placement

	case OriginCanvas:
		id := c.txn.item.InstanceID
		from, ok := c.engine.Locate(plan, id)
		if !ok {
			c.state = DragAborted
			c.txn = dragTxn{}
			return plan, DropResult{}, fmt.Errorf("drop: %w: %s", ErrItemNotFound, id)
		}
		if from.Day != c.txn.day || from.Slot != c.txn.slot {
			log.Printf("[drag] %s moved since drag start (%d/%s → %d/%s)",
				id, c.txn.day, c.txn.slot, from.Day, from.Slot)
		}
		moved, mv, err := c.engine.MoveCrossDay(plan, from.Day, from.Slot, from.Index, day, slot)
		if err != nil {
			return plan, DropResult{}, fmt.Errorf("drop: %w", err)
		}
		out = moved
		res.Placement = mv.Placement
		res.TimeCleared = mv.TimeCleared
	}

	c.state = DragCommitted
	c.txn = dragTxn{}
	return out, res, nil
}
