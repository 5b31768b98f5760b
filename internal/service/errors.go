// Package service contains the itinerary scheduling engine and the plan store
// that every mutation funnels through.
package service

import "errors"

// ─── Validation Errors ──────────────────────────────────────
//
// Caller-fixable. The triggering action is rejected and state is unchanged.

var (
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrDayNotFound      = errors.New("day not found in plan")
	ErrIndexOutOfRange  = errors.New("slot index out of range")
	ErrInvalidTime      = errors.New("start time must be HH:MM (24h)")
	ErrInvalidTransport = errors.New("arrival transport must be car, walk or public")
	ErrInvalidDayCount  = errors.New("a plan needs at least one day")
	ErrLastDay          = errors.New("cannot delete the last day of a plan")
	ErrLastPlan         = errors.New("cannot delete the last remaining plan")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrItemNotFound     = errors.New("schedule item not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoActiveDrag     = errors.New("no drag in progress")
	ErrChecklistItem    = errors.New("checklist item not found")

	// ErrInvalidBackup is the import-error condition: the document is
	// rejected as a whole and nothing is imported.
	ErrInvalidBackup = errors.New("invalid backup document")
)

// ErrNoChange is returned by an UpdateActivePlan callback that left the plan
// as it was. The store skips the write and reports success.
var ErrNoChange = errors.New("plan unchanged")
