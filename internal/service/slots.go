package service

import (
	"sort"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/pkg/timeutil"
)

// ─── Slot Boundaries ────────────────────────────────────────
//
// Canonical table (24h clock, lower-inclusive, upper-exclusive):
//
//	[05:00, 11:00)  →  morning
//	[11:00, 17:00)  →  afternoon
//	[17:00, 21:00)  →  evening
//	otherwise       →  night
//
// Accommodation is never derived from a time.

const (
	morningStart   = 5 * 60
	afternoonStart = 11 * 60
	eveningStart   = 17 * 60
	nightStart     = 21 * 60
)

// CanonicalSlot returns the time-of-day slot for an "HH:MM" clock.
func CanonicalSlot(clock string) (model.Slot, bool) {
	m, ok := timeutil.ParseClock(clock)
	if !ok {
		return "", false
	}
	switch {
	case m >= morningStart && m < afternoonStart:
		return model.SlotMorning, true
	case m >= afternoonStart && m < eveningStart:
		return model.SlotAfternoon, true
	case m >= eveningStart && m < nightStart:
		return model.SlotEvening, true
	default:
		return model.SlotNight, true
	}
}

// DefaultStartTime is the time quick-fill assigns to a new item in slot.
func DefaultStartTime(slot model.Slot) string {
	switch slot {
	case model.SlotMorning:
		return "09:00"
	case model.SlotAfternoon:
		return "13:00"
	case model.SlotEvening:
		return "18:00"
	case model.SlotNight:
		return "22:00"
	case model.SlotAccommodation:
		return "15:00"
	}
	return ""
}

// ─── Ordering ───────────────────────────────────────────────

// untimedKey sorts after every valid "HH:MM".
const untimedKey = "ZZZZ"

func sortKey(item model.ScheduleItem) string {
	if item.StartTime == "" {
		return untimedKey
	}
	return item.StartTime
}

// sortSlot orders items in place by start time. Untimed items keep their
// insertion order after all timed ones. Accommodation is left as is.
func sortSlot(slot model.Slot, items []model.ScheduleItem) {
	if !slot.Timed() {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]) < sortKey(items[j])
	})
}

// IsSorted reports whether items satisfy the ordering invariant for slot.
func IsSorted(slot model.Slot, items []model.ScheduleItem) bool {
	if !slot.Timed() {
		return true
	}
	for i := 1; i < len(items); i++ {
		if sortKey(items[i-1]) > sortKey(items[i]) {
			return false
		}
	}
	return true
}
