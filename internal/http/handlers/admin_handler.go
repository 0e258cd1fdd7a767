package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/currency"
	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
	"steeze/internal/theme"
	"steeze/internal/validate"
)

type AdminHandler struct {
	Dashboard *services.Dashboard
	Orders    *services.AdminOrders
	Shell     *services.Shell
	MaxUpload int
	// APIBase prefixes receipt file paths.
	APIBase string
}

// confirmPage asks the operator to repeat a POST with confirm=yes.
func confirmPage(c *fiber.Ctx, message, action, cancel string, fields map[string]string) error {
	return render(c, "confirm", fiber.Map{
		"Message": message,
		"Action":  action,
		"Cancel":  cancel,
		"Fields":  fields,
	})
}

func confirmed(c *fiber.Ctx) bool { return c.FormValue("confirm") == "yes" }

// GET /admin?tab=
func (h *AdminHandler) Home(c *fiber.Ctx) error {
	st := stateOf(c)
	tab := st.AdminTab
	if q := c.Query("tab"); q != "" {
		tab = services.NormalizeTab(q)
		if tab != st.AdminTab {
			if err := h.Shell.SetAdminTab(st, tab); err != nil {
				return err
			}
		}
	}
	tab = services.NormalizeTab(tab)

	snap := h.Dashboard.Refresh(c.UserContext())
	for slot, err := range snap.Errs {
		applog.Error(c, "admin.refresh.fail", err, map[string]any{"slot": slot})
	}
	data := fiber.Map{
		"Tab":      tab,
		"Tabs":     services.Tabs,
		"Snap":     snap,
		"Stats":    snap.Stats(),
		"Statuses": domain.Statuses,
	}
	switch tab {
	case services.TabReviews:
		reviews, err := h.Dashboard.Reviews(c.UserContext())
		if err != nil {
			applog.Error(c, "admin.reviews.fail", err, nil)
			data["ReviewsErr"] = userMessage(err, "Could not load reviews.")
		}
		data["Reviews"] = reviews
	case services.TabSettings:
		data["Themes"] = theme.Themes()
		data["Fonts"] = theme.Fonts()
	}
	return render(c, "admin/dashboard", data)
}

// tabRedirect keeps the older per-section URLs working.
func (h *AdminHandler) tabRedirect(tab string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Redirect("/admin?tab="+tab, fiber.StatusFound)
	}
}

// GET /admin/products/new
func (h *AdminHandler) NewProduct(c *fiber.Ctx) error {
	return render(c, "admin/product_form", fiber.Map{"Form": services.ProductForm{}})
}

// GET /admin/products/:id/edit
func (h *AdminHandler) EditProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Dashboard.Product(c.UserContext(), domain.ID(id))
	if err != nil {
		applog.Error(c, "admin.product.load.fail", err, map[string]any{"product": id})
		return notFound(c, fiber.StatusNotFound, userMessage(err, "Product not found"))
	}
	return render(c, "admin/product_form", fiber.Map{"Form": services.FormFor(p)})
}

// POST /admin/products creates or updates.
func (h *AdminHandler) SaveProduct(c *fiber.Ctx) error {
	var f services.ProductForm
	if err := c.BodyParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	if err := h.Dashboard.SaveProduct(c.UserContext(), f); err != nil {
		applog.Info(c, "admin.product.save.fail", map[string]any{"product": f.ID, "reason": err.Error()})
		return render(c.Status(fiber.StatusBadRequest), "admin/product_form", fiber.Map{
			"Form": f,
			"Err":  userMessage(err, "Could not save the product."),
		})
	}
	applog.Audit(c, "admin.product.save", map[string]any{"product": f.ID, "name": f.Name})
	flashOK(c, "Product saved.")
	return c.Redirect("/admin?tab=products", fiber.StatusSeeOther)
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	if !confirmed(c) {
		return confirmPage(c, "Delete product "+c.FormValue("name")+"? This cannot be undone.",
			"/admin/products/"+id+"/delete", "/admin?tab=products", nil)
	}
	if err := h.Dashboard.DeleteProduct(c.UserContext(), domain.ID(id)); err != nil {
		applog.Error(c, "admin.product.delete.fail", err, map[string]any{"product": id})
		flashErr(c, userMessage(err, "Could not delete the product."))
		return c.Redirect("/admin?tab=products", fiber.StatusSeeOther)
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product": id})
	flashOK(c, "Product deleted.")
	return c.Redirect("/admin?tab=products", fiber.StatusSeeOther)
}

// POST /admin/reviews/:id/delete
func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Review not found")
	}
	if !confirmed(c) {
		return confirmPage(c, "Delete this review? This cannot be undone.",
			"/admin/reviews/"+id+"/delete", "/admin?tab=reviews", nil)
	}
	if err := h.Dashboard.DeleteReview(c.UserContext(), domain.ID(id)); err != nil {
		applog.Error(c, "admin.review.delete.fail", err, map[string]any{"review": id})
		flashErr(c, userMessage(err, "Could not delete the review."))
		return c.Redirect("/admin?tab=reviews", fiber.StatusSeeOther)
	}
	applog.Audit(c, "admin.review.delete", map[string]any{"review": id})
	flashOK(c, "Review deleted.")
	return c.Redirect("/admin?tab=reviews", fiber.StatusSeeOther)
}

// POST /admin/settings
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	form := map[string]string{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		form[string(k)] = string(v)
	})
	saved, err := h.Dashboard.SaveSettings(c.UserContext(), form)
	if err != nil {
		applog.Error(c, "admin.settings.save.fail", err, nil)
		flashErr(c, userMessage(err, "Could not save settings."))
		return c.Redirect("/admin?tab=settings", fiber.StatusSeeOther)
	}
	applog.Audit(c, "admin.settings.save", map[string]any{"theme": saved.String(domain.SettingTheme)})
	flashOK(c, "Settings saved.")
	return c.Redirect("/admin?tab=settings", fiber.StatusSeeOther)
}

func orderPath(id string) string { return "/admin/orders/" + id }

func (h *AdminHandler) orderID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// GET /admin/orders/:id
func (h *AdminHandler) Order(c *fiber.Ctx) error {
	id, ok := h.orderID(c)
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	d, err := h.Orders.Load(c.UserContext(), stateOf(c), domain.ID(id))
	if errors.Is(err, services.ErrOrderNotFound) {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		applog.Error(c, "admin.order.load.fail", err, map[string]any{"order_id": id})
		return notFound(c, fiber.StatusBadGateway, userMessage(err, "Could not load this order."))
	}
	receiptURL := ""
	if d.Receipt != nil && d.Receipt.FilePath != "" {
		receiptURL = strings.TrimRight(h.APIBase, "/") + "/" + strings.TrimLeft(d.Receipt.FilePath, "/")
	}
	return render(c, "admin/order", fiber.Map{
		"D":          d,
		"Order":      d.Order,
		"ReceiptURL": receiptURL,
		"Settlement": settingsOf(c).Settlement(),
	})
}

// POST /admin/orders/:id/action runs one confirmable mutation. Without
// confirm=yes it only renders the confirmation page.
func (h *AdminHandler) Action(c *fiber.Ctx) error {
	id, ok := h.orderID(c)
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	ctx := c.UserContext()
	back := orderPath(id)
	action := services.Action(c.FormValue("action"))
	arg := c.FormValue("arg")
	st := stateOf(c)

	if !confirmed(c) {
		d, err := h.Orders.Load(ctx, st, domain.ID(id))
		if err != nil {
			flashErr(c, userMessage(err, "Could not load this order."))
			return c.Redirect(back, fiber.StatusSeeOther)
		}
		shown := arg
		switch action {
		case services.ActionSaveItems:
			if d.Edit == nil {
				flashErr(c, userMessage(services.ErrNoEdit, ""))
				return c.Redirect(back, fiber.StatusSeeOther)
			}
			shown = currency.FormatAmount(d.Edit.Total(), currency.Base, nil)
		case services.ActionRemoveLine:
			line, err := strconv.Atoi(c.FormValue("line"))
			if d.Edit == nil || err != nil || line < 0 || line >= len(d.Edit.Items) {
				flashErr(c, userMessage(services.ErrNoSuchLine, ""))
				return c.Redirect(back, fiber.StatusSeeOther)
			}
			shown = d.Edit.Items[line].Name
		case services.ActionMessage:
			if strings.TrimSpace(arg) == "" {
				flashErr(c, userMessage(services.ErrEmptyMessage, ""))
				return c.Redirect(back, fiber.StatusSeeOther)
			}
		}
		msg, known := services.Describe(action, d.Order, shown)
		if !known {
			return c.Status(fiber.StatusBadRequest).SendString("unknown action")
		}
		fields := map[string]string{"action": string(action)}
		for _, k := range []string{"arg", "line", "notify"} {
			if v := c.FormValue(k); v != "" {
				fields[k] = v
			}
		}
		return confirmPage(c, msg, back+"/action", back, fields)
	}

	var err error
	done := "Order updated."
	switch action {
	case services.ActionStatus:
		_, err = h.Orders.ChangeStatus(ctx, domain.ID(id), arg, c.FormValue("notify") != "0")
		done = "Status changed to " + arg + "."
	case services.ActionSaveItems:
		_, err = h.Orders.SaveItems(ctx, st, domain.ID(id))
		done = "Order items saved."
	case services.ActionVerifyReceipt:
		_, err = h.Orders.VerifyReceipt(ctx, domain.ID(id))
		done = "Receipt verified."
	case services.ActionRejectReceipt:
		_, err = h.Orders.RejectReceipt(ctx, domain.ID(id))
		done = "Receipt rejected."
	case services.ActionDeleteReceipt:
		err = h.Orders.DeleteReceipt(ctx, domain.ID(id))
		done = "Receipt deleted."
	case services.ActionReminder:
		var s domain.Settings
		s, err = h.Dashboard.Settings(ctx)
		if err == nil {
			err = h.Orders.SendReminder(ctx, domain.ID(id), s.Settlement())
		}
		done = "Payment reminder sent."
	case services.ActionMessage:
		err = h.Orders.SendMessage(ctx, domain.ID(id), arg)
		done = "Message sent."
	case services.ActionRemoveLine:
		line, convErr := strconv.Atoi(c.FormValue("line"))
		if convErr != nil {
			err = services.ErrNoSuchLine
			break
		}
		_, err = h.Orders.RemoveLine(st, domain.ID(id), line)
		done = "Line removed."
	default:
		return c.Status(fiber.StatusBadRequest).SendString("unknown action")
	}
	if err != nil {
		applog.Error(c, "admin.order."+string(action)+".fail", err, map[string]any{"order_id": id})
		flashErr(c, userMessage(err, "Could not update the order."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	applog.Audit(c, "admin.order."+string(action), map[string]any{"order_id": id, "arg": arg})
	flashOK(c, done)
	return c.Redirect(back, fiber.StatusSeeOther)
}

// POST /admin/orders/:id/edit opens or closes edit mode.
func (h *AdminHandler) Edit(c *fiber.Ctx) error {
	id, ok := h.orderID(c)
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	st := stateOf(c)
	var err error
	if c.FormValue("cancel") != "" {
		err = h.Orders.CancelEdit(st, domain.ID(id))
	} else {
		_, err = h.Orders.StartEdit(c.UserContext(), st, domain.ID(id))
	}
	if err != nil {
		flashErr(c, userMessage(err, "Could not edit this order."))
	}
	return c.Redirect(orderPath(id), fiber.StatusSeeOther)
}

// POST /admin/orders/:id/nudge changes one buffered quantity by +1 or -1.
func (h *AdminHandler) Nudge(c *fiber.Ctx) error {
	id, ok := h.orderID(c)
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	line, err := strconv.Atoi(c.FormValue("line"))
	delta, okDelta := validate.SignedQty(c.FormValue("delta"))
	if err != nil || !okDelta {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if _, err := h.Orders.Nudge(stateOf(c), domain.ID(id), line, delta); err != nil {
		flashErr(c, userMessage(err, "Could not change the quantity."))
	}
	return c.Redirect(orderPath(id), fiber.StatusSeeOther)
}

// POST /admin/orders/:id/receipt uploads proof for the customer.
func (h *AdminHandler) Upload(c *fiber.Ctx) error {
	id, ok := h.orderID(c)
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	back := orderPath(id)
	up, closer, err := receiptUpload(c, h.MaxUpload)
	if err != nil {
		flashErr(c, userMessage(err, "Could not read that file."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	defer closer.Close()
	if err := h.Orders.UploadReceipt(c.UserContext(), domain.ID(id), up); err != nil {
		applog.Error(c, "admin.receipt.upload.fail", err, map[string]any{"order_id": id})
		flashErr(c, userMessage(err, "Could not upload the receipt."))
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	applog.Audit(c, "admin.receipt.upload", map[string]any{"order_id": id})
	flashOK(c, "Receipt uploaded.")
	return c.Redirect(back, fiber.StatusSeeOther)
}
