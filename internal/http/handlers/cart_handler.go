package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
	"steeze/internal/validate"
)

type CartHandler struct {
	Shell   *services.Shell
	Catalog *services.Catalog
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	st := stateOf(c)
	return render(c, "cart", fiber.Map{"Cart": st.Cart, "Subtotal": st.Subtotal()})
}

func cartProductID(c *fiber.Ctx) (domain.ID, bool) {
	id, ok := validate.ID(c.FormValue("productId"))
	return domain.ID(id), ok
}

// POST /cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, ok := cartProductID(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	// Price and name come from the API, never from the form.
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		flashErr(c, userMessage(err, "This item is no longer available."))
		return c.Redirect("/products", fiber.StatusSeeOther)
	}
	if err := h.Shell.AddToCart(stateOf(c), p, qty); err != nil {
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"product": id, "qty": qty})
	flashOK(c, p.Name+" added to your cart.")
	return c.Redirect(backTo(c, "/cart"), fiber.StatusSeeOther)
}

// POST /cart/update sets an absolute quantity; zero removes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := cartProductID(c)
	qty, okQty := validate.SignedQty(c.FormValue("qty"))
	if !ok || !okQty {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if err := h.Shell.UpdateQuantity(stateOf(c), id, qty); err != nil {
		flashErr(c, userMessage(err, "Could not update your cart."))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// POST /cart/adjust applies the +/- buttons.
func (h *CartHandler) Adjust(c *fiber.Ctx) error {
	id, ok := cartProductID(c)
	delta, err := strconv.Atoi(c.FormValue("delta"))
	if !ok || err != nil || (delta != 1 && delta != -1) {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if err := h.Shell.Adjust(stateOf(c), id, delta); err != nil {
		flashErr(c, userMessage(err, "Could not update your cart."))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := cartProductID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Shell.RemoveFromCart(stateOf(c), id); err != nil {
		return err
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Shell.ClearCart(stateOf(c)); err != nil {
		return err
	}
	flashOK(c, "Your cart is empty.")
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// POST /currency
func (h *CartHandler) Currency(c *fiber.Ctx) error {
	if err := h.Shell.SetCurrency(stateOf(c), c.FormValue("code")); err != nil {
		return err
	}
	return c.Redirect(backTo(c, "/"), fiber.StatusSeeOther)
}

// backTo returns a local path from the "next" form field, or fallback.
func backTo(c *fiber.Ctx, fallback string) string {
	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
