package handler

import (
	"net/http"
	"strings"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/internal/service"
)

// CatalogHandler serves the read-only catalog, templates and the user's
// custom items.
type CatalogHandler struct {
	catalog *service.CatalogService
	store   *service.PlanStore
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService, store *service.PlanStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, store: store}
}

// ListItems handles GET /api/v1/catalog?region=taipei
//
// Without a region the whole catalog is returned.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Items(r.URL.Query().Get("region")))
}

// ListTemplates handles GET /api/v1/templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Templates())
}

// ListCustomItems handles GET /api/v1/custom-items
func (h *CatalogHandler) ListCustomItems(w http.ResponseWriter, r *http.Request) {
	items := h.store.CustomItems()
	if items == nil {
		items = []model.TravelItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// AddCustomItem handles POST /api/v1/custom-items
//
//	Request body:
//	{ "title": "Dinner with Mei", "price": "1,200", "duration": "2 hours" }
//
// The server assigns the id and the custom category.
func (h *CatalogHandler) AddCustomItem(w http.ResponseWriter, r *http.Request) {
	var item model.TravelItem
	if !decodeBody(w, r, &item) {
		return
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		badRequest(w, "title is required")
		return
	}
	writeJSON(w, http.StatusCreated, h.store.AddCustomItem(item))
}
