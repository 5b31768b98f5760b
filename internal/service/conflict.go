package service

import (
	"sort"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/pkg/timeutil"
)

// ConflictKind names the type of schedule conflict.
type ConflictKind string

const ConflictOverlap ConflictKind = "overlap"

// Conflict flags an item whose start falls before the previous item ends.
// It is an annotation for display; conflicting items are allowed to coexist.
type Conflict struct {
	Kind               ConflictKind `json:"kind"`
	Slot               model.Slot   `json:"slot"`
	Index              int          `json:"index"`
	InstanceID         string       `json:"instanceId"`
	PreviousInstanceID string       `json:"previousInstanceId"`
	PreviousEnds       string       `json:"previousEnds"`
	OverlapMinutes     int          `json:"overlapMinutes"`
}

// DetectConflicts checks each adjacent pair in slot (by start-time order).
// When both have a start time and the later one starts before the earlier
// one ends, the later item is flagged.
func DetectConflicts(slot model.Slot, items []model.ScheduleItem) []Conflict {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	if slot.Timed() {
		sort.SliceStable(order, func(a, b int) bool {
			return sortKey(items[order[a]]) < sortKey(items[order[b]])
		})
	}

	var conflicts []Conflict
	for k := 1; k < len(order); k++ {
		prev, next := items[order[k-1]], items[order[k]]
		prevStart, ok1 := timeutil.ParseClock(prev.StartTime)
		nextStart, ok2 := timeutil.ParseClock(next.StartTime)
		if !ok1 || !ok2 {
			continue
		}

		dur := timeutil.ParseDurationMinutes(prev.Duration)
		end := prevStart + dur
		if nextStart < end {
			ends, _ := timeutil.AddMinutes(prev.StartTime, dur)
			conflicts = append(conflicts, Conflict{
				Kind:               ConflictOverlap,
				Slot:               slot,
				Index:              order[k],
				InstanceID:         next.InstanceID,
				PreviousInstanceID: prev.InstanceID,
				PreviousEnds:       ends,
				OverlapMinutes:     end - nextStart,
			})
		}
	}
	return conflicts
}

// DayConflicts runs DetectConflicts over every timed slot of a day.
func DayConflicts(ds model.DaySchedule) []Conflict {
	conflicts := []Conflict{}
	for _, slot := range model.Slots {
		if !slot.Timed() {
			continue
		}
		conflicts = append(conflicts, DetectConflicts(slot, ds.Items(slot))...)
	}
	return conflicts
}

// ConflictIDs returns the set of flagged instance ids, for quick lookup
// while rendering.
func ConflictIDs(conflicts []Conflict) map[string]bool {
	ids := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		ids[c.InstanceID] = true
	}
	return ids
}
