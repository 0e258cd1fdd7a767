package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/domain"
	"steeze/internal/services"
	"steeze/internal/validate"
)

type InventoryHandler struct {
	Catalog *services.Catalog
}

// GET /api/v1/availability?productId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	if _, ok := validate.ID(productID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid productId",
		})
	}
	p, err := h.Catalog.Product(c.UserContext(), domain.ID(productID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown product"})
	}
	return c.JSON(fiber.Map{
		"productId": p.ID,
		"status":    services.StockLevel(p),
		"qty":       int(p.Stock),
	})
}
