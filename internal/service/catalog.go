package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shiva/wanderplan/internal/model"
)

// CatalogRepository reads catalog entries from durable storage.
type CatalogRepository interface {
	Regions(ctx context.Context) ([]string, error)
	ListEntries(ctx context.Context, region string) ([]model.CatalogEntry, error)
}

// CatalogService serves the read-only travel catalog and the quick-fill
// suggestion table built from it.
//
// The built-in catalog is always present. Entries loaded from the repository
// are layered on top and replace built-ins with the same id.
type CatalogService struct {
	repo      CatalogRepository
	templates []model.Template

	mu      sync.RWMutex
	entries map[string]model.CatalogEntry // by item id
	table   SuggestionTable
}

// NewCatalogService creates a catalog backed by repo. repo may be nil, in
// which case only the built-in catalog is served.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	s := &CatalogService{repo: repo, templates: BuiltinTemplates()}
	s.rebuild(nil)
	return s
}

// Refresh reloads every region from the repository. On failure the current
// catalog stays in place.
func (s *CatalogService) Refresh(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	regions, err := s.repo.Regions(ctx)
	if err != nil {
		return fmt.Errorf("catalog: list regions: %w", err)
	}

	var loaded []model.CatalogEntry
	for _, region := range regions {
		entries, err := s.repo.ListEntries(ctx, region)
		if err != nil {
			return fmt.Errorf("catalog: load region %q: %w", region, err)
		}
		loaded = append(loaded, entries...)
	}

	s.rebuild(loaded)
	log.Printf("[catalog] Loaded %d entries across %d regions", len(loaded), len(regions))
	return nil
}

func (s *CatalogService) rebuild(extra []model.CatalogEntry) {
	entries := make(map[string]model.CatalogEntry)
	for _, e := range BuiltinCatalog() {
		entries[e.Item.ID] = e
	}
	for _, e := range extra {
		entries[e.Item.ID] = e
	}

	table := make(SuggestionTable)
	for _, e := range entries {
		table.Add(e)
	}

	s.mu.Lock()
	s.entries = entries
	s.table = table
	s.mu.Unlock()
}

// Suggestions implements SuggestionSource.
func (s *CatalogService) Suggestions(region string, slot model.Slot) []model.TravelItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.table.Suggestions(region, slot)
	out := make([]model.TravelItem, len(items))
	copy(out, items)
	sortItemsByID(out)
	return out
}

// Items lists the catalog for a region (all regions when region is empty).
func (s *CatalogService) Items(region string) []model.TravelItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := regionKey(region)
	items := []model.TravelItem{}
	for _, e := range s.entries {
		if key == "" || regionKey(e.Item.Region) == key {
			items = append(items, e.Item.Clone())
		}
	}
	sortItemsByID(items)
	return items
}

// Item looks up a catalog entry by id.
func (s *CatalogService) Item(id string) (model.TravelItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return model.TravelItem{}, false
	}
	return e.Item.Clone(), true
}

// Templates lists the available itinerary templates.
func (s *CatalogService) Templates() []model.Template {
	return s.templates
}

// Template looks up a template by id.
func (s *CatalogService) Template(id string) (model.Template, error) {
	for _, t := range s.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}
