package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ─── DaySchedule ────────────────────────────────────────────

// DaySchedule holds the five slot buckets of one calendar day.
type DaySchedule struct {
	Morning       []ScheduleItem `json:"morning"`
	Afternoon     []ScheduleItem `json:"afternoon"`
	Evening       []ScheduleItem `json:"evening"`
	Night         []ScheduleItem `json:"night"`
	Accommodation []ScheduleItem `json:"accommodation"`
}

// EmptyDay returns a DaySchedule whose buckets are non-nil, so it encodes as
// empty arrays rather than null.
func EmptyDay() DaySchedule {
	return DaySchedule{
		Morning:       []ScheduleItem{},
		Afternoon:     []ScheduleItem{},
		Evening:       []ScheduleItem{},
		Night:         []ScheduleItem{},
		Accommodation: []ScheduleItem{},
	}
}

// Items returns the bucket for slot. The returned slice is shared with d.
func (d DaySchedule) Items(slot Slot) []ScheduleItem {
	switch slot {
	case SlotMorning:
		return d.Morning
	case SlotAfternoon:
		return d.Afternoon
	case SlotEvening:
		return d.Evening
	case SlotNight:
		return d.Night
	case SlotAccommodation:
		return d.Accommodation
	}
	return nil
}

// WithItems returns a copy of d whose slot bucket is items.
func (d DaySchedule) WithItems(slot Slot, items []ScheduleItem) DaySchedule {
	if items == nil {
		items = []ScheduleItem{}
	}
	switch slot {
	case SlotMorning:
		d.Morning = items
	case SlotAfternoon:
		d.Afternoon = items
	case SlotEvening:
		d.Evening = items
	case SlotNight:
		d.Night = items
	case SlotAccommodation:
		d.Accommodation = items
	}
	return d
}

// Count returns the number of items across all slots.
func (d DaySchedule) Count() int {
	n := 0
	for _, slot := range Slots {
		n += len(d.Items(slot))
	}
	return n
}

// Clone deep-copies every bucket.
func (d DaySchedule) Clone() DaySchedule {
	out := EmptyDay()
	for _, slot := range Slots {
		src := d.Items(slot)
		items := make([]ScheduleItem, len(src))
		for i := range src {
			items[i] = src[i].Clone()
		}
		out = out.WithItems(slot, items)
	}
	return out
}

// ─── Plan ───────────────────────────────────────────────────

// Plan is a complete multi-day itinerary.
//
// Invariant: TotalDays == len(Schedule) and the keys are exactly
// "Day 1" .. "Day TotalDays".
type Plan struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	StartDate      string                 `json:"startDate"`
	EndDate        string                 `json:"endDate"`
	TotalDays      int                    `json:"totalDays"`
	Schedule       map[string]DaySchedule `json:"schedule"`
	Checklist      []ChecklistItem        `json:"checklist"`
	Region         string                 `json:"region"`
	TargetCurrency string                 `json:"targetCurrency"`
	ExchangeRate   float64                `json:"exchangeRate"`
	CreatedAt      int64                  `json:"createdAt"`
}

// DayKey returns the schedule key for the 1-indexed day n.
func DayKey(n int) string {
	return "Day " + strconv.Itoa(n)
}

// ParseDayKey is the inverse of DayKey.
func ParseDayKey(key string) (int, error) {
	rest, ok := strings.CutPrefix(key, "Day ")
	if !ok {
		return 0, fmt.Errorf("invalid day key %q", key)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid day key %q", key)
	}
	return n, nil
}

// Day returns the schedule for the 1-indexed day n.
func (p Plan) Day(n int) (DaySchedule, bool) {
	d, ok := p.Schedule[DayKey(n)]
	return d, ok
}

// Clone deep-copies the plan, including every schedule item.
func (p Plan) Clone() Plan {
	out := p
	out.Schedule = make(map[string]DaySchedule, len(p.Schedule))
	for k, d := range p.Schedule {
		out.Schedule[k] = d.Clone()
	}
	out.Checklist = append([]ChecklistItem(nil), p.Checklist...)
	return out
}

// ShallowCopy copies the plan header and the schedule map but shares the day
// buckets. Callers replace whole buckets rather than writing into them.
func (p Plan) ShallowCopy() Plan {
	out := p
	out.Schedule = make(map[string]DaySchedule, len(p.Schedule))
	for k, d := range p.Schedule {
		out.Schedule[k] = d
	}
	return out
}

// ConsistentDays reports whether TotalDays and the schedule keys agree.
func (p Plan) ConsistentDays() bool {
	if len(p.Schedule) != p.TotalDays {
		return false
	}
	for n := 1; n <= p.TotalDays; n++ {
		if _, ok := p.Schedule[DayKey(n)]; !ok {
			return false
		}
	}
	return true
}

// Template is a reusable itinerary. Days are ordered; Days[0] becomes "Day 1".
type Template struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Region string        `json:"region"`
	Days   []DaySchedule `json:"days"`
}

// ─── Persisted state ────────────────────────────────────────

// Snapshot is everything the plan store writes to durable storage.
type Snapshot struct {
	Plans              []Plan       `json:"plans"`
	ActivePlanID       string       `json:"activePlanId"`
	CustomItems        []TravelItem `json:"customItems"`
	BudgetLimit        float64      `json:"budgetLimit"`
	SubscribedCreators []string     `json:"subscribedCreators"`
}

// BackupVersion is written into every exported Backup.
const BackupVersion = "1.0"

// Backup is the export/import document.
type Backup struct {
	Version string `json:"version"`
	Snapshot
}
