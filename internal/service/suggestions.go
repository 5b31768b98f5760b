package service

import (
	"sort"
	"strings"

	"github.com/shiva/wanderplan/internal/model"
)

// SuggestionSource supplies quick-fill candidates.
type SuggestionSource interface {
	Suggestions(region string, slot model.Slot) []model.TravelItem
}

// SuggestionTable is a region → slot → candidates lookup. Region keys are
// case-insensitive.
type SuggestionTable map[string]map[model.Slot][]model.TravelItem

// Suggestions implements SuggestionSource. Unknown regions yield nothing.
func (t SuggestionTable) Suggestions(region string, slot model.Slot) []model.TravelItem {
	bySlot, ok := t[regionKey(region)]
	if !ok {
		return nil
	}
	return bySlot[slot]
}

// Add registers entry under its region for each suggested slot.
func (t SuggestionTable) Add(entry model.CatalogEntry) {
	key := regionKey(entry.Item.Region)
	if key == "" || len(entry.SuggestedSlots) == 0 {
		return
	}
	bySlot, ok := t[key]
	if !ok {
		bySlot = make(map[model.Slot][]model.TravelItem)
		t[key] = bySlot
	}
	for _, slot := range entry.SuggestedSlots {
		if !slot.Valid() {
			continue
		}
		bySlot[slot] = append(bySlot[slot], entry.Item)
	}
}

// NewSuggestionTable indexes catalog entries by region and slot.
func NewSuggestionTable(entries []model.CatalogEntry) SuggestionTable {
	t := make(SuggestionTable)
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

func regionKey(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

func sortItemsByID(items []model.TravelItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
