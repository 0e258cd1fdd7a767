package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
	"steeze/internal/validate"
)

// OrderHandler serves the customer account pages.
type OrderHandler struct {
	Account   *services.Account
	MaxUpload int
}

// GET /account
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Account.Orders(c.UserContext(), stateOf(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return render(c, "account", fiber.Map{"Err": userMessage(err, "Could not load your orders.")})
	}
	return render(c, "account", fiber.Map{"Orders": orders})
}

// GET /account/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	o, r, err := h.Account.Order(c.UserContext(), stateOf(c), domain.ID(id))
	if errors.Is(err, services.ErrOrderNotFound) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		applog.Error(c, "orders.view.fail", err, map[string]any{"order_id": id})
		return notFound(c, fiber.StatusBadGateway, userMessage(err, "Could not load this order."))
	}
	return render(c, "order", fiber.Map{
		"Order":      o,
		"Receipt":    r,
		"Title":      services.InvoiceTitle(o.Status),
		"CanUpload":  r == nil && !o.Status.IsPaid() && !o.Status.IsTerminal(),
		"Settlement": settingsOf(c).Settlement(),
	})
}

// POST /account/orders/:id/receipt
func (h *OrderHandler) Upload(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	back := "/account/orders/" + id
	up, closer, err := receiptUpload(c, h.MaxUpload)
	if err != nil {
		flashErr(c, userMessage(err, "Could not read that file."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	defer closer.Close()
	if err := h.Account.UploadReceipt(c.UserContext(), stateOf(c), domain.ID(id), up); err != nil {
		applog.Error(c, "receipt.upload.fail", err, map[string]any{"order_id": id})
		flashErr(c, userMessage(err, "Could not upload your receipt."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	applog.Audit(c, "receipt.upload", map[string]any{"order_id": id})
	flashOK(c, "Receipt uploaded. We will confirm your payment shortly.")
	return c.Redirect(back, fiber.StatusSeeOther)
}
