package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "steeze/internal/log"
	"steeze/internal/services"
	"steeze/internal/validate"
)

type SearchHandler struct {
	Catalog *services.Catalog
}

var sorts = map[string]bool{
	"":                     true,
	services.SortNewest:    true,
	services.SortPriceAsc:  true,
	services.SortPriceDesc: true,
	services.SortName:      true,
}

// GET /products
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	f := services.Filter{
		Category:    strings.TrimSpace(c.Query("category")),
		SubCategory: strings.TrimSpace(c.Query("sub")),
		OnSale:      c.Query("sale") == "1",
		Featured:    c.Query("featured") == "1",
		Sort:        c.Query("sort"),
	}
	if !sorts[f.Sort] {
		applog.Security(c, "validation.fail", map[string]any{"field": "sort"})
		f.Sort = ""
	}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			return render(c.Status(fiber.StatusBadRequest), "products", fiber.Map{
				"Filter": f, "Err": "Enter a valid keyword (letters and numbers only)",
			})
		}
		f.Query = q
	}

	all, err := h.Catalog.List(c.UserContext(), services.Filter{})
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return render(c, "products", fiber.Map{"Filter": f, "Err": userMessage(err, "Could not load products. Please retry.")})
	}
	products := services.Apply(all, f)
	return render(c, "products", fiber.Map{
		"Filter":     f,
		"Products":   products,
		"Count":      len(products),
		"Categories": services.Categories(all),
	})
}
