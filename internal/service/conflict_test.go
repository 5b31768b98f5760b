package service

import (
	"testing"

	"github.com/shiva/wanderplan/internal/model"
)

func timed(id, start, duration string) model.ScheduleItem {
	it := item(id, start)
	it.InstanceID = id
	it.Duration = duration
	return it
}

// A two-hour visit at 10:00 followed by something at 11:00.
func TestDetectConflicts_Overlap(t *testing.T) {
	items := []model.ScheduleItem{
		timed("museum", "10:00", "2 hours"),
		timed("lunch", "11:00", "1 hour"),
	}
	got := DetectConflicts(model.SlotMorning, items)
	if len(got) != 1 {
		t.Fatalf("conflicts = %+v, want 1", got)
	}
	c := got[0]
	if c.InstanceID != "lunch" || c.PreviousInstanceID != "museum" || c.Index != 1 {
		t.Errorf("conflict = %+v", c)
	}
	if c.PreviousEnds != "12:00" || c.OverlapMinutes != 60 {
		t.Errorf("PreviousEnds = %s, OverlapMinutes = %d, want 12:00 and 60", c.PreviousEnds, c.OverlapMinutes)
	}
}

func TestDetectConflicts_EveningShortLabel(t *testing.T) {
	items := []model.ScheduleItem{
		timed("dinner", "18:00", "2hr"),
		timed("show", "19:00", ""),
	}
	got := DetectConflicts(model.SlotEvening, items)
	if len(got) != 1 || got[0].InstanceID != "show" {
		t.Fatalf("conflicts = %+v, want show flagged", got)
	}
	if got[0].PreviousEnds != "20:00" {
		t.Errorf("PreviousEnds = %s, want 20:00", got[0].PreviousEnds)
	}
}

func TestDetectConflicts_NoOverlap(t *testing.T) {
	tests := []struct {
		name  string
		items []model.ScheduleItem
	}{
		{"back to back", []model.ScheduleItem{
			timed("a", "12:00", "1 hour"),
			timed("b", "13:00", "30 min"),
		}},
		{"untimed neighbour", []model.ScheduleItem{
			timed("a", "12:00", "3 hours"),
			timed("b", "", "1 hour"),
		}},
		{"single item", []model.ScheduleItem{timed("a", "12:00", "3 hours")}},
		{"empty", nil},
	}
	for _, tt := range tests {
		if got := DetectConflicts(model.SlotAfternoon, tt.items); len(got) != 0 {
			t.Errorf("%s: conflicts = %+v, want none", tt.name, got)
		}
	}
}

func TestDetectConflicts_UnparsableDurationUsesDefault(t *testing.T) {
	items := []model.ScheduleItem{
		timed("a", "18:00", "a while"),
		timed("b", "18:45", ""),
	}
	got := DetectConflicts(model.SlotEvening, items)
	if len(got) != 1 || got[0].OverlapMinutes != 15 {
		t.Errorf("conflicts = %+v, want one 15 min overlap", got)
	}
}

func TestDayConflicts(t *testing.T) {
	ds := model.EmptyDay()
	ds.Morning = []model.ScheduleItem{timed("a", "09:00", "90min"), timed("b", "10:00", "1h")}
	ds.Night = []model.ScheduleItem{timed("c", "21:00", "1h"), timed("d", "23:00", "1h")}
	// Accommodation is never checked.
	ds.Accommodation = []model.ScheduleItem{timed("h1", "15:00", "1 night"), timed("h2", "15:00", "1 night")}

	got := DayConflicts(ds)
	if len(got) != 1 || got[0].InstanceID != "b" {
		t.Fatalf("conflicts = %+v, want b only", got)
	}
	ids := ConflictIDs(got)
	if !ids["b"] || ids["a"] {
		t.Errorf("ConflictIDs = %v", ids)
	}
}
