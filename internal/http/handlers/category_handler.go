package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

type CategoryHandler struct {
	Catalog *services.Catalog
}

const homeShelf = 8

func shelf(ps []domain.Product) []domain.Product {
	if len(ps) > homeShelf {
		return ps[:homeShelf]
	}
	return ps
}

// GET /
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	all, err := h.Catalog.List(c.UserContext(), services.Filter{Sort: services.SortNewest})
	if err != nil {
		applog.Error(c, "home.products.fail", err, nil)
		return render(c, "home", fiber.Map{"Err": userMessage(err, "Could not load products. Please retry.")})
	}
	s := settingsOf(c)
	data := fiber.Map{
		"Categories": services.Categories(all),
		"Latest":     shelf(all),
	}
	if s.Bool(domain.SettingShowFeatured, true) {
		data["Featured"] = shelf(services.Apply(all, services.Filter{Featured: true}))
	}
	if s.Bool(domain.SettingShowSale, true) {
		data["Sale"] = shelf(services.Apply(all, services.Filter{OnSale: true}))
	}
	return render(c, "home", data)
}

// GET /category/:name
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	name, _ := url.PathUnescape(c.Params("name"))
	return c.Redirect("/products?category="+url.QueryEscape(name), fiber.StatusMovedPermanently)
}
