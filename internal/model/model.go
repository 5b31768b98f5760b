// Package model contains the domain models for the itinerary planner.
// These structs double as the persisted plan document (JSON-compatible).
package model

// ─── Enums ──────────────────────────────────────────────────

// Slot is one of the five time-of-day buckets of a DaySchedule.
type Slot string

const (
	SlotMorning       Slot = "morning"
	SlotAfternoon     Slot = "afternoon"
	SlotEvening       Slot = "evening"
	SlotNight         Slot = "night"
	SlotAccommodation Slot = "accommodation"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight, SlotAccommodation}

// Valid reports whether s names one of the five slots.
func (s Slot) Valid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotNight, SlotAccommodation:
		return true
	}
	return false
}

// Timed reports whether items in s are ordered by start time.
// Accommodation holds lodging check-ins and is not a time sequence.
func (s Slot) Timed() bool {
	return s.Valid() && s != SlotAccommodation
}

type Category string

const (
	CategoryAttraction Category = "attraction"
	CategoryFood       Category = "food"
	CategoryLodging    Category = "lodging"
	CategoryTransport  Category = "transport"
	CategoryShopping   Category = "shopping"
	CategoryNature     Category = "nature"
	CategoryCustom     Category = "custom"
)

// TransportMode is how the traveller reaches a stop.
type TransportMode string

const (
	TransportCar    TransportMode = "car"
	TransportWalk   TransportMode = "walk"
	TransportPublic TransportMode = "public"
)

// Valid reports whether m is a known mode. The empty mode is not valid.
func (m TransportMode) Valid() bool {
	return m == TransportCar || m == TransportWalk || m == TransportPublic
}

// ─── Location ───────────────────────────────────────────────

// Coordinates is a WGS-84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ─── Catalog ────────────────────────────────────────────────

// InsiderTip is the optional narrative attached to a catalog entry.
type InsiderTip struct {
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content"`
	Highlights []string `json:"highlights,omitempty"`
}

// TravelItem is an immutable catalog entry.
type TravelItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	TitleEn     string       `json:"titleEn,omitempty"`
	Category    Category     `json:"category"`
	Duration    string       `json:"duration,omitempty"`
	Price       Price        `json:"price"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Region      string       `json:"region,omitempty"`
	InsiderTip  *InsiderTip  `json:"insiderTip,omitempty"`
}

// Clone returns a deep copy so per-instance edits never reach the catalog.
func (t TravelItem) Clone() TravelItem {
	out := t
	if t.Coordinates != nil {
		c := *t.Coordinates
		out.Coordinates = &c
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.InsiderTip != nil {
		tip := *t.InsiderTip
		tip.Highlights = append([]string(nil), t.InsiderTip.Highlights...)
		out.InsiderTip = &tip
	}
	return out
}

// ScheduleItem is a placed instance of a TravelItem.
type ScheduleItem struct {
	TravelItem
	InstanceID       string        `json:"instanceId"`
	StartTime        string        `json:"startTime,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	ArrivalTransport TransportMode `json:"arrivalTransport,omitempty"`
}

// Clone returns a deep copy of the item.
func (s ScheduleItem) Clone() ScheduleItem {
	out := s
	out.TravelItem = s.TravelItem.Clone()
	return out
}

// NewScheduleItem places a catalog entry. The instance id is left for the
// schedule engine to assign.
func NewScheduleItem(item TravelItem) ScheduleItem {
	return ScheduleItem{TravelItem: item.Clone()}
}

// ChecklistItem is one entry of a plan's packing/to-do checklist.
type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// CatalogEntry is a catalog item together with the slots it is suggested
// for during quick-fill.
type CatalogEntry struct {
	Item           TravelItem `json:"item"`
	SuggestedSlots []Slot     `json:"suggestedSlots,omitempty"`
}
