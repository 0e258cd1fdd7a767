package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
	"steeze/internal/validate"
)

type ProductHandler struct {
	Catalog *services.Catalog
}

// GET /product/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	p, err := h.Catalog.Product(c.UserContext(), domain.ID(id))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	data := fiber.Map{"P": p, "Stock": string(services.StockLevel(p))}
	if settingsOf(c).Bool(domain.SettingShowReviews, true) {
		reviews, err := h.Catalog.Reviews(c.UserContext(), p.ID)
		if err != nil {
			applog.Error(c, "product.reviews.fail", err, map[string]any{"product": id})
		}
		data["ShowReviews"] = true
		data["Reviews"] = reviews
		data["Rating"] = domain.AverageRating(reviews)
		data["Reviewed"] = services.HasReviewed(reviews, stateOf(c).Customer)
	}
	return render(c, "product", data)
}

// POST /product/:id/reviews
func (h *ProductHandler) Review(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	back := "/product/" + id
	st := stateOf(c)
	if !st.LoggedIn() {
		flashErr(c, "Please log in to leave a review.")
		return c.Redirect("/login?next="+back, fiber.StatusSeeOther)
	}
	rating, _ := strconv.Atoi(c.FormValue("rating"))
	err := h.Catalog.SubmitReview(c.UserContext(), st.Customer, domain.ID(id), rating, c.FormValue("comment"))
	if err != nil {
		applog.Info(c, "review.reject", map[string]any{"product": id, "reason": err.Error()})
		flashErr(c, userMessage(err, "Could not post your review. Please retry."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	applog.Audit(c, "review.create", map[string]any{"product": id, "user": st.Customer.UserID})
	flashOK(c, "Thanks for your review!")
	return c.Redirect(back, fiber.StatusSeeOther)
}
