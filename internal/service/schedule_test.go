package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shiva/wanderplan/internal/model"
)

// ─── Helpers ────────────────────────────────────────────────

func newTestEngine(src SuggestionSource) *ScheduleEngine {
	e := NewScheduleEngine(src)
	n := 0
	e.NewID = func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	}
	e.Pick = func(int) int { return 0 }
	return e
}

func newTestPlan(t *testing.T, days int) model.Plan {
	t.Helper()
	plan, err := NewPlan(PlanOptions{Name: "Test", StartDate: "2026-03-01", Days: days, Region: "taipei"},
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	return plan
}

func item(id, start string) model.ScheduleItem {
	return model.ScheduleItem{
		TravelItem: model.TravelItem{ID: id, Title: id, Category: model.CategoryAttraction, Duration: "1 hour"},
		StartTime:  start,
	}
}

func mustInsert(t *testing.T, e *ScheduleEngine, p model.Plan, day int, slot model.Slot, it model.ScheduleItem) model.Plan {
	t.Helper()
	out, _, err := e.Insert(p, day, slot, it)
	if err != nil {
		t.Fatalf("Insert(%d, %s, %s): %v", day, slot, it.ID, err)
	}
	return out
}

func slotIDs(p model.Plan, day int, slot model.Slot) []string {
	ds, _ := p.Day(day)
	var ids []string
	for _, it := range ds.Items(slot) {
		ids = append(ids, it.ID)
	}
	return ids
}

// assertInvariants checks slot/time consistency, ordering and id uniqueness.
func assertInvariants(t *testing.T, p model.Plan) {
	t.Helper()
	if !p.ConsistentDays() {
		t.Fatalf("plan days inconsistent: totalDays=%d keys=%d", p.TotalDays, len(p.Schedule))
	}
	seen := map[string]bool{}
	for key, ds := range p.Schedule {
		for _, slot := range model.Slots {
			items := ds.Items(slot)
			if !IsSorted(slot, items) {
				t.Errorf("%s %s not sorted", key, slot)
			}
			for _, it := range items {
				if seen[it.InstanceID] {
					t.Errorf("duplicate instanceId %q", it.InstanceID)
				}
				seen[it.InstanceID] = true
				if slot.Timed() && it.StartTime != "" {
					want, _ := CanonicalSlot(it.StartTime)
					if want != slot {
						t.Errorf("%s at %s is in %s, want %s", it.ID, it.StartTime, slot, want)
					}
				}
			}
		}
	}
}

// ─── Slot table ─────────────────────────────────────────────

func TestCanonicalSlot(t *testing.T) {
	tests := []struct {
		clock string
		want  model.Slot
	}{
		{"04:59", model.SlotNight},
		{"05:00", model.SlotMorning},
		{"10:59", model.SlotMorning},
		{"11:00", model.SlotAfternoon},
		{"16:59", model.SlotAfternoon},
		{"17:00", model.SlotEvening},
		{"20:59", model.SlotEvening},
		{"21:00", model.SlotNight},
		{"00:30", model.SlotNight},
	}
	for _, tt := range tests {
		got, ok := CanonicalSlot(tt.clock)
		if !ok || got != tt.want {
			t.Errorf("CanonicalSlot(%s) = %s, want %s", tt.clock, got, tt.want)
		}
	}
	if _, ok := CanonicalSlot("25:00"); ok {
		t.Errorf("CanonicalSlot(25:00) ok = true, want false")
	}
}

// ─── Insert ─────────────────────────────────────────────────

// Inserting a 14:00 item into morning lands it in afternoon,
// sorted among the existing afternoon items.
func TestInsert_RebucketsByTime(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotAfternoon, item("lunch", "12:00"))
	p = mustInsert(t, e, p, 1, model.SlotAfternoon, item("tea", "16:00"))

	out, placement, err := e.Insert(p, 1, model.SlotMorning, item("museum", "14:00"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if placement.Slot != model.SlotAfternoon || placement.Index != 1 {
		t.Errorf("placement = %+v, want afternoon[1]", placement)
	}
	if got := slotIDs(out, 1, model.SlotAfternoon); fmt.Sprint(got) != "[lunch museum tea]" {
		t.Errorf("afternoon = %v, want [lunch museum tea]", got)
	}
	if got := slotIDs(out, 1, model.SlotMorning); len(got) != 0 {
		t.Errorf("morning = %v, want empty", got)
	}
	assertInvariants(t, out)
}

func TestInsert_UntimedSortLastInInsertionOrder(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", ""))
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("b", "10:00"))
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("c", ""))
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("d", "7:30"))

	if got := slotIDs(p, 1, model.SlotMorning); fmt.Sprint(got) != "[d b a c]" {
		t.Errorf("morning = %v, want [d b a c]", got)
	}
	ds, _ := p.Day(1)
	if ds.Morning[0].StartTime != "07:30" {
		t.Errorf("start time = %q, want normalised 07:30", ds.Morning[0].StartTime)
	}
}

func TestInsert_AccommodationNotRebucketed(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	out, placement, err := e.Insert(p, 1, model.SlotAccommodation, item("hotel", "15:00"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if placement.Slot != model.SlotAccommodation {
		t.Errorf("slot = %s, want accommodation", placement.Slot)
	}
	if got := slotIDs(out, 1, model.SlotAccommodation); len(got) != 1 {
		t.Errorf("accommodation = %v, want 1 item", got)
	}
}

func TestInsert_Errors(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)

	if _, _, err := e.Insert(p, 1, "brunch", item("x", "")); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("unknown slot err = %v, want ErrUnknownSlot", err)
	}
	if _, _, err := e.Insert(p, 2, model.SlotMorning, item("x", "")); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("missing day err = %v, want ErrDayNotFound", err)
	}
	if _, _, err := e.Insert(p, 1, model.SlotMorning, item("x", "9am")); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad time err = %v, want ErrInvalidTime", err)
	}
}

func TestInsert_InstanceIDs(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 2)

	// Same catalog item on two days gets two instance ids.
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("cafe", "09:00"))
	p = mustInsert(t, e, p, 2, model.SlotMorning, item("cafe", "09:00"))

	// A caller-supplied id that is already taken is replaced.
	dup := item("other", "10:00")
	dup.InstanceID = "inst-1"
	p = mustInsert(t, e, p, 1, model.SlotMorning, dup)

	// An unused caller-supplied id is kept.
	own := item("own", "10:30")
	own.InstanceID = "mine"
	p, placement, err := e.Insert(p, 1, model.SlotMorning, own)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if placement.InstanceID != "mine" {
		t.Errorf("instanceId = %q, want mine", placement.InstanceID)
	}
	assertInvariants(t, p)
}

func TestInsert_CopyOnWrite(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", "09:00"))

	out := mustInsert(t, e, p, 1, model.SlotMorning, item("b", "08:00"))

	before, _ := p.Day(1)
	if len(before.Morning) != 1 || before.Morning[0].ID != "a" {
		t.Errorf("input plan changed: %v", slotIDs(p, 1, model.SlotMorning))
	}
	got, _ := out.Day(1)
	got.Morning[1].Notes = "edited"
	if before.Morning[0].Notes != "" {
		t.Errorf("new plan aliases old morning slice")
	}
}

// ─── Remove ─────────────────────────────────────────────────

func TestRemove(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotEvening, item("a", "18:00"))
	p = mustInsert(t, e, p, 1, model.SlotEvening, item("b", "19:00"))

	out, removed, err := e.Remove(p, 1, model.SlotEvening, 0)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.ID != "a" {
		t.Errorf("removed = %s, want a", removed.ID)
	}
	if got := slotIDs(out, 1, model.SlotEvening); fmt.Sprint(got) != "[b]" {
		t.Errorf("evening = %v, want [b]", got)
	}
	if got := slotIDs(p, 1, model.SlotEvening); len(got) != 2 {
		t.Errorf("input plan changed: %v", got)
	}
}

func TestRemove_OutOfRange(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotEvening, item("a", "18:00"))

	for _, idx := range []int{-1, 1, 5} {
		out, _, err := e.Remove(p, 1, model.SlotEvening, idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(index=%d) err = %v, want ErrIndexOutOfRange", idx, err)
		}
		if got := slotIDs(out, 1, model.SlotEvening); len(got) != 1 {
			t.Errorf("Remove(index=%d) changed plan: %v", idx, got)
		}
	}
}

// ─── Update ─────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func TestUpdate_RebucketsOnNewTime(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", "09:00"))
	p = mustInsert(t, e, p, 1, model.SlotEvening, item("dinner", "19:00"))

	out, placement, err := e.Update(p, 1, model.SlotMorning, 0, ItemPatch{StartTime: strPtr("18:00"), Notes: strPtr("book ahead")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if placement.Slot != model.SlotEvening || placement.Index != 0 {
		t.Errorf("placement = %+v, want evening[0]", placement)
	}
	ds, _ := out.Day(1)
	if len(ds.Morning) != 0 || len(ds.Evening) != 2 {
		t.Fatalf("morning=%d evening=%d, want 0 and 2", len(ds.Morning), len(ds.Evening))
	}
	if ds.Evening[0].Notes != "book ahead" {
		t.Errorf("notes = %q, want merged", ds.Evening[0].Notes)
	}
	assertInvariants(t, out)
}

func TestUpdate_SameSlotResorts(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotAfternoon, item("a", "12:00"))
	p = mustInsert(t, e, p, 1, model.SlotAfternoon, item("b", "13:00"))

	out, placement, err := e.Update(p, 1, model.SlotAfternoon, 0, ItemPatch{StartTime: strPtr("15:00")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if placement.Index != 1 {
		t.Errorf("index = %d, want 1", placement.Index)
	}
	if got := slotIDs(out, 1, model.SlotAfternoon); fmt.Sprint(got) != "[b a]" {
		t.Errorf("afternoon = %v, want [b a]", got)
	}
}

func TestUpdate_ClearedTimeKeepsSlot(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotNight, item("bar", "22:00"))
	p = mustInsert(t, e, p, 1, model.SlotNight, item("club", "23:00"))

	out, placement, err := e.Update(p, 1, model.SlotNight, 0, ItemPatch{StartTime: strPtr("")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if placement.Slot != model.SlotNight || placement.Index != 1 {
		t.Errorf("placement = %+v, want night[1] (untimed sorts last)", placement)
	}
	if got := slotIDs(out, 1, model.SlotNight); fmt.Sprint(got) != "[club bar]" {
		t.Errorf("night = %v, want [club bar]", got)
	}
	ds, _ := out.Day(1)
	if got := ds.Items(model.SlotNight)[1].StartTime; got != "" {
		t.Errorf("bar StartTime = %q, want empty", got)
	}
}

func TestUpdate_AccommodationIgnoresTime(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotAccommodation, item("hotel", ""))

	_, placement, err := e.Update(p, 1, model.SlotAccommodation, 0, ItemPatch{StartTime: strPtr("09:00")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if placement.Slot != model.SlotAccommodation {
		t.Errorf("slot = %s, want accommodation", placement.Slot)
	}
}

func TestUpdate_Errors(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", "09:00"))

	if _, _, err := e.Update(p, 1, model.SlotMorning, 3, ItemPatch{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
	if _, _, err := e.Update(p, 1, model.SlotMorning, 0, ItemPatch{StartTime: strPtr("31:00")}); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("err = %v, want ErrInvalidTime", err)
	}
	bike := model.TransportMode("bike")
	if _, _, err := e.Update(p, 1, model.SlotMorning, 0, ItemPatch{ArrivalTransport: &bike}); !errors.Is(err, ErrInvalidTransport) {
		t.Errorf("err = %v, want ErrInvalidTransport", err)
	}
}

// ─── MoveCrossDay ───────────────────────────────────────────

func TestMoveCrossDay_PreservesIdentity(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 2)
	src := item("museum", "10:00")
	src.Coordinates = &model.Coordinates{Lat: 25, Lng: 121}
	src.Price = 350
	src.Notes = "audio guide"
	p = mustInsert(t, e, p, 1, model.SlotMorning, src)
	p = mustInsert(t, e, p, 2, model.SlotMorning, item("hike", "07:00"))
	orig, _ := p.Day(1)
	want := orig.Morning[0]

	out, res, err := e.MoveCrossDay(p, 1, model.SlotMorning, 0, 2, model.SlotMorning)
	if err != nil {
		t.Fatalf("MoveCrossDay: %v", err)
	}
	if res.TimeCleared {
		t.Errorf("TimeCleared = true for same slot type")
	}
	ds, _ := out.Day(2)
	got := ds.Morning[res.Index]
	if got.InstanceID != want.InstanceID || got.ID != want.ID || got.StartTime != "10:00" ||
		got.Price != want.Price || got.Notes != want.Notes || *got.Coordinates != *want.Coordinates {
		t.Errorf("moved item = %+v, want %+v", got, want)
	}
	if got := slotIDs(out, 1, model.SlotMorning); len(got) != 0 {
		t.Errorf("day 1 morning = %v, want empty", got)
	}
	assertInvariants(t, out)
}

func TestMoveCrossDay_DifferentSlotClearsTime(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 2)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("museum", "10:00"))
	p = mustInsert(t, e, p, 2, model.SlotEvening, item("dinner", "18:30"))

	out, res, err := e.MoveCrossDay(p, 1, model.SlotMorning, 0, 2, model.SlotEvening)
	if err != nil {
		t.Fatalf("MoveCrossDay: %v", err)
	}
	if !res.TimeCleared {
		t.Errorf("TimeCleared = false, want true")
	}
	ds, _ := out.Day(2)
	if ds.Evening[1].ID != "museum" || ds.Evening[1].StartTime != "" {
		t.Errorf("evening = %+v, want museum untimed last", ds.Evening)
	}
	assertInvariants(t, out)
}

func TestMoveCrossDay_UntimedItemNotFlagged(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("walk", ""))

	_, res, err := e.MoveCrossDay(p, 1, model.SlotMorning, 0, 1, model.SlotEvening)
	if err != nil {
		t.Fatalf("MoveCrossDay: %v", err)
	}
	if res.TimeCleared {
		t.Errorf("TimeCleared = true, want false for an item with no start time")
	}
}

func TestMoveCrossDay_SameDay(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", "09:00"))
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("b", "10:00"))

	out, res, err := e.MoveCrossDay(p, 1, model.SlotMorning, 1, 1, model.SlotNight)
	if err != nil {
		t.Fatalf("MoveCrossDay: %v", err)
	}
	if res.Slot != model.SlotNight {
		t.Errorf("slot = %s, want night", res.Slot)
	}
	if got := slotIDs(out, 1, model.SlotMorning); fmt.Sprint(got) != "[a]" {
		t.Errorf("morning = %v, want [a]", got)
	}
	if got := slotIDs(out, 1, model.SlotNight); fmt.Sprint(got) != "[b]" {
		t.Errorf("night = %v, want [b]", got)
	}
}

func TestMoveCrossDay_Errors(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 1)
	p = mustInsert(t, e, p, 1, model.SlotMorning, item("a", "09:00"))

	if _, _, err := e.MoveCrossDay(p, 1, model.SlotMorning, 0, 3, model.SlotMorning); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("err = %v, want ErrDayNotFound", err)
	}
	if _, _, err := e.MoveCrossDay(p, 1, model.SlotMorning, 0, 1, "lunch"); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err = %v, want ErrUnknownSlot", err)
	}
	if _, _, err := e.MoveCrossDay(p, 1, model.SlotMorning, 1, 1, model.SlotNight); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

// ─── QuickFill ──────────────────────────────────────────────

func testSuggestions() SuggestionTable {
	return NewSuggestionTable([]model.CatalogEntry{
		{Item: model.TravelItem{ID: "s1", Title: "Temple", Region: "taipei", Category: model.CategoryAttraction}, SuggestedSlots: []model.Slot{model.SlotMorning}},
		{Item: model.TravelItem{ID: "s2", Title: "Market", Region: "taipei", Category: model.CategoryFood}, SuggestedSlots: []model.Slot{model.SlotMorning, model.SlotNight}},
		{Item: model.TravelItem{ID: "h1", Title: "Hotel", Region: "taipei", Category: model.CategoryLodging}, SuggestedSlots: []model.Slot{model.SlotAccommodation}},
	})
}

func TestQuickFill_DefaultTimes(t *testing.T) {
	e := newTestEngine(testSuggestions())
	p := newTestPlan(t, 1)

	tests := []struct {
		slot model.Slot
		want string
	}{
		{model.SlotMorning, "09:00"},
		{model.SlotNight, "22:00"},
		{model.SlotAccommodation, "15:00"},
	}
	for _, tt := range tests {
		out, placement, err := e.QuickFill(p, 1, tt.slot)
		if err != nil {
			t.Fatalf("QuickFill(%s): %v", tt.slot, err)
		}
		if placement == nil {
			t.Fatalf("QuickFill(%s) placement = nil, want filled", tt.slot)
		}
		if placement.Slot != tt.slot {
			t.Errorf("QuickFill(%s) landed in %s", tt.slot, placement.Slot)
		}
		ds, _ := out.Day(1)
		if got := ds.Items(tt.slot)[placement.Index].StartTime; got != tt.want {
			t.Errorf("QuickFill(%s) start = %s, want %s", tt.slot, got, tt.want)
		}
	}
}

func TestQuickFill_PrefersUnusedItems(t *testing.T) {
	e := newTestEngine(testSuggestions())
	p := newTestPlan(t, 1)

	p, first, _ := e.QuickFill(p, 1, model.SlotMorning)
	p, second, _ := e.QuickFill(p, 1, model.SlotMorning)
	ds, _ := p.Day(1)
	if ds.Morning[first.Index].ID == ds.Morning[second.Index].ID {
		t.Errorf("quick-fill picked %s twice", ds.Morning[0].ID)
	}
}

// A region with no suggestions returns an explicit "nothing"
// and leaves the schedule unchanged.
func TestQuickFill_NoSuggestions(t *testing.T) {
	e := newTestEngine(testSuggestions())
	p := newTestPlan(t, 1)
	p.Region = "atlantis"

	out, placement, err := e.QuickFill(p, 1, model.SlotMorning)
	if err != nil {
		t.Fatalf("QuickFill: %v", err)
	}
	if placement != nil {
		t.Errorf("placement = %+v, want nil", placement)
	}
	ds, _ := out.Day(1)
	if ds.Count() != 0 {
		t.Errorf("schedule changed: %d items", ds.Count())
	}

	// Evening has no candidates even in a known region.
	p.Region = "taipei"
	if _, placement, _ := e.QuickFill(p, 1, model.SlotEvening); placement != nil {
		t.Errorf("evening placement = %+v, want nil", placement)
	}
}

// ─── Locate ─────────────────────────────────────────────────

func TestLocate(t *testing.T) {
	e := newTestEngine(nil)
	p := newTestPlan(t, 2)
	p, placed, _ := e.Insert(p, 2, model.SlotEvening, item("x", "19:00"))

	got, ok := e.Locate(p, placed.InstanceID)
	if !ok || got != placed {
		t.Errorf("Locate = (%+v, %v), want (%+v, true)", got, ok, placed)
	}
	if _, ok := e.Locate(p, "nope"); ok {
		t.Errorf("Locate(nope) ok = true")
	}
}
