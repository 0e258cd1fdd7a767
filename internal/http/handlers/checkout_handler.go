package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/checkout"
	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

type CheckoutHandler struct {
	Checkout  *services.Checkout
	MaxUpload int
}

func (h *CheckoutHandler) page(c *fiber.Ctx, f checkout.Flow, errMsg string) error {
	st := stateOf(c)
	return render(c, "checkout", fiber.Map{
		"Flow":       f,
		"Steps":      checkout.Steps,
		"StepIndex":  f.Index(),
		"Cart":       st.Cart,
		"Subtotal":   st.Subtotal(),
		"Settlement": settingsOf(c).Settlement(),
		"Err":        errMsg,
	})
}

// GET /checkout
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	f, err := h.Checkout.Flow(stateOf(c))
	if err != nil {
		return err
	}
	return h.page(c, f, "")
}

func (h *CheckoutHandler) done(c *fiber.Ctx, action string, err error) error {
	if err != nil {
		applog.Info(c, "checkout."+action+".reject", map[string]any{"reason": err.Error()})
		flashErr(c, userMessage(err, "Something went wrong. Please try again."))
	}
	return c.Redirect("/checkout", fiber.StatusSeeOther)
}

// POST /checkout/proceed
func (h *CheckoutHandler) Proceed(c *fiber.Ctx) error {
	_, err := h.Checkout.Proceed(stateOf(c))
	return h.done(c, "proceed", err)
}

// POST /checkout/details
func (h *CheckoutHandler) Details(c *fiber.Ctx) error {
	var d domain.CustomerInfo
	if err := c.BodyParser(&d); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	_, err := h.Checkout.SubmitDetails(stateOf(c), d, c.FormValue("order_notes"))
	return h.done(c, "details", err)
}

// POST /checkout/back
func (h *CheckoutHandler) Back(c *fiber.Ctx) error {
	_, err := h.Checkout.Back(stateOf(c))
	return h.done(c, "back", err)
}

// POST /checkout/confirm places the order shown on the review step.
func (h *CheckoutHandler) Confirm(c *fiber.Ctx) error {
	f, err := h.Checkout.Confirm(c.UserContext(), stateOf(c))
	if err != nil {
		if !errors.Is(err, checkout.ErrWrongStep) {
			applog.Error(c, "checkout.confirm.fail", err, nil)
		}
		return h.done(c, "confirm", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": f.OrderID, "total": int64(f.OrderTotal)})
	flashOK(c, "Order #"+f.DisplayOrder()+" placed. Complete your bank transfer to finish.")
	return c.Redirect("/checkout", fiber.StatusSeeOther)
}

// POST /checkout/upload
func (h *CheckoutHandler) Upload(c *fiber.Ctx) error {
	up, closer, err := receiptUpload(c, h.MaxUpload)
	if err != nil {
		return h.done(c, "upload", err)
	}
	defer closer.Close()
	f, err := h.Checkout.UploadReceipt(c.UserContext(), stateOf(c), up)
	if err != nil {
		applog.Error(c, "checkout.upload.fail", err, nil)
		return h.done(c, "upload", err)
	}
	applog.Audit(c, "receipt.upload", map[string]any{"order_id": f.OrderID})
	flashOK(c, "Receipt received. We will confirm your payment shortly.")
	return c.Redirect("/checkout", fiber.StatusSeeOther)
}

// POST /checkout/later
func (h *CheckoutHandler) Later(c *fiber.Ctx) error {
	f, err := h.Checkout.PayLater(stateOf(c))
	if err == nil {
		applog.Info(c, "checkout.pay_later", map[string]any{"order_id": f.OrderID})
	}
	return h.done(c, "later", err)
}

// POST /checkout/new starts over after a finished checkout.
func (h *CheckoutHandler) New(c *fiber.Ctx) error {
	if err := h.Checkout.Reset(stateOf(c)); err != nil {
		return err
	}
	return c.Redirect("/products", fiber.StatusSeeOther)
}
