package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shiva/wanderplan/internal/model"
)

func TestNewPlan(t *testing.T) {
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	p, err := NewPlan(PlanOptions{Days: 3}, now)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if p.Name != "My Trip" {
		t.Errorf("Name = %q, want My Trip", p.Name)
	}
	if p.StartDate != "2026-05-10" || p.EndDate != "2026-05-12" {
		t.Errorf("dates = %s..%s, want 2026-05-10..2026-05-12", p.StartDate, p.EndDate)
	}
	if p.TotalDays != 3 || !p.ConsistentDays() {
		t.Errorf("TotalDays = %d, keys = %d", p.TotalDays, len(p.Schedule))
	}
	if p.ID == "" || p.CreatedAt != now.UnixMilli() {
		t.Errorf("ID = %q, CreatedAt = %d", p.ID, p.CreatedAt)
	}

	if _, err := NewPlan(PlanOptions{Days: 0}, now); !errors.Is(err, ErrInvalidDayCount) {
		t.Errorf("Days=0 err = %v, want ErrInvalidDayCount", err)
	}
	if _, err := NewPlan(PlanOptions{Days: 1, StartDate: "10/05/2026"}, now); err == nil {
		t.Errorf("bad start date err = nil, want error")
	}
}

func TestEndDateFor(t *testing.T) {
	tests := []struct {
		start string
		days  int
		want  string
	}{
		{"2026-02-27", 3, "2026-03-01"},
		{"2026-12-31", 1, "2026-12-31"},
		{"garbage", 2, ""},
		{"2026-01-01", 0, ""},
	}
	for _, tt := range tests {
		if got := EndDateFor(tt.start, tt.days); got != tt.want {
			t.Errorf("EndDateFor(%s, %d) = %q, want %q", tt.start, tt.days, got, tt.want)
		}
	}
}

// Applying the two-day Taipei template to a three-day plan.
func TestApplyTemplate(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 3)
	p = mustInsert(t, e, p, 3, model.SlotMorning, item("old", "09:00"))

	tpl := BuiltinTemplates()[0]
	out, err := e.ApplyTemplate(p, tpl)
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}

	if out.TotalDays != 2 || !out.ConsistentDays() {
		t.Fatalf("TotalDays = %d, keys = %d, want 2", out.TotalDays, len(out.Schedule))
	}
	if out.EndDate != "2026-03-02" {
		t.Errorf("EndDate = %s, want 2026-03-02", out.EndDate)
	}

	count := 0
	for _, ds := range out.Schedule {
		count += ds.Count()
		for _, slot := range model.Slots {
			for _, it := range ds.Items(slot) {
				if strings.HasPrefix(it.InstanceID, "tpl-") {
					t.Errorf("template instance id %q reused", it.InstanceID)
				}
			}
		}
	}
	if count != 7 {
		t.Errorf("item count = %d, want 7", count)
	}
	assertInvariants(t, out)

	// Template data is copied, not shared.
	ds, _ := out.Day(1)
	ds.Morning[0].Notes = "changed"
	if tpl.Days[0].Morning[0].Notes != "" {
		t.Errorf("template mutated through applied plan")
	}
	if p.TotalDays != 3 {
		t.Errorf("input plan TotalDays = %d, want 3", p.TotalDays)
	}
}

func TestApplyTemplate_Empty(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 2)
	if _, err := e.ApplyTemplate(p, model.Template{ID: "empty"}); !errors.Is(err, ErrInvalidDayCount) {
		t.Errorf("err = %v, want ErrInvalidDayCount", err)
	}
}

func TestAddDay(t *testing.T) {
	p := newTestPlan(t, 2)
	out := AddDay(p)
	if out.TotalDays != 3 || !out.ConsistentDays() {
		t.Errorf("TotalDays = %d, keys = %d", out.TotalDays, len(out.Schedule))
	}
	if out.EndDate != "2026-03-03" {
		t.Errorf("EndDate = %s, want 2026-03-03", out.EndDate)
	}
	if p.TotalDays != 2 || len(p.Schedule) != 2 {
		t.Errorf("input plan changed")
	}
}

// Deleting a middle day renumbers the days after it.
func TestDeleteDay_Renumbers(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 3)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("one", "09:00"))
	p = mustInsert(t, e, p, 2, model.SlotMorning, item("two", "09:00"))
	p = mustInsert(t, e, p, 3, model.SlotMorning, item("three", "09:00"))

	out, err := DeleteDay(p, 2)
	if err != nil {
		t.Fatalf("DeleteDay: %v", err)
	}
	if out.TotalDays != 2 || !out.ConsistentDays() {
		t.Fatalf("TotalDays = %d, keys = %d", out.TotalDays, len(out.Schedule))
	}
	if got := slotIDs(out, 1, model.SlotMorning); len(got) != 1 || got[0] != "one" {
		t.Errorf("Day 1 = %v, want [one]", got)
	}
	if got := slotIDs(out, 2, model.SlotMorning); len(got) != 1 || got[0] != "three" {
		t.Errorf("Day 2 = %v, want [three]", got)
	}
	if _, ok := out.Day(3); ok {
		t.Errorf("Day 3 still present")
	}
}

func TestDeleteDay_Errors(t *testing.T) {
	p := newTestPlan(t, 1)
	if _, err := DeleteDay(p, 1); !errors.Is(err, ErrLastDay) {
		t.Errorf("err = %v, want ErrLastDay", err)
	}
	p = newTestPlan(t, 2)
	if _, err := DeleteDay(p, 5); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("err = %v, want ErrDayNotFound", err)
	}
}
