package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/catalog"
)

// CatalogHandler serves the reward and waste type tables.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Rewards handles GET /catalog/rewards.
func (h *CatalogHandler) Rewards(c *fiber.Ctx) error {
	return data(c, http.StatusOK, h.catalog.Rewards())
}

// WasteTypes handles GET /catalog/waste-types.
func (h *CatalogHandler) WasteTypes(c *fiber.Ctx) error {
	return data(c, http.StatusOK, h.catalog.WasteTypes())
}
