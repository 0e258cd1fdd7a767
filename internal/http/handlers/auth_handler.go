package handlers

import (
	"github.com/gofiber/fiber/v2"

	"steeze/internal/apiclient"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

type AuthHandler struct {
	Account *services.Account
	Shell   *services.Shell
	API     *apiclient.Client
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if stateOf(c).LoggedIn() {
		return c.Redirect("/account")
	}
	return render(c, "login", fiber.Map{"Next": backTo(c, "")})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	_, err := h.Account.Login(c.UserContext(), stateOf(c), email, c.FormValue("password"))
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{
			"Err":   userMessage(err, "Invalid email or password"),
			"Email": email,
			"Next":  backTo(c, ""),
		})
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	flashOK(c, "Welcome back!")
	return c.Redirect(backTo(c, "/account"), fiber.StatusSeeOther)
}

// GET /register
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	r := services.Registration{
		Name:            c.FormValue("name"),
		Email:           c.FormValue("email"),
		Phone:           c.FormValue("phone"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	}
	cust, err := h.Account.Register(c.UserContext(), stateOf(c), r)
	if err != nil {
		applog.Info(c, "auth.register.fail", map[string]any{"email": r.Email, "reason": err.Error()})
		return render(c.Status(fiber.StatusBadRequest), "register", fiber.Map{
			"Err":  userMessage(err, "Could not create your account."),
			"Form": r,
		})
	}
	applog.Audit(c, "auth.register", map[string]any{"user": cust.UserID})
	flashOK(c, "Welcome to the store, "+cust.Name+"!")
	return c.Redirect("/account", fiber.StatusSeeOther)
}

// GET /reset
func (h *AuthHandler) ResetForm(c *fiber.Ctx) error {
	return render(c, "reset", fiber.Map{})
}

// POST /reset always answers the same way so addresses cannot be probed.
func (h *AuthHandler) Reset(c *fiber.Ctx) error {
	email := c.FormValue("email")
	if err := h.Account.ResetPassword(c.UserContext(), email); err != nil {
		applog.Info(c, "auth.reset.fail", map[string]any{"reason": err.Error()})
	}
	return render(c, "reset", fiber.Map{"Sent": true})
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	st := stateOf(c)
	if err := h.Account.Logout(st); err != nil {
		return err
	}
	applog.Audit(c, "auth.logout", nil)
	flashOK(c, "You have been logged out.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// GET /account/password
func (h *AuthHandler) PasswordForm(c *fiber.Ctx) error {
	return render(c, "password", fiber.Map{})
}

// POST /account/password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	err := h.Account.ChangePassword(c.UserContext(), stateOf(c),
		c.FormValue("current_password"), c.FormValue("new_password"), c.FormValue("confirm_password"))
	if err != nil {
		applog.Security(c, "auth.password.fail", map[string]any{"reason": err.Error()})
		return render(c.Status(fiber.StatusBadRequest), "password", fiber.Map{"Err": userMessage(err, "Could not change your password.")})
	}
	applog.Audit(c, "auth.password.change", nil)
	flashOK(c, "Password updated.")
	return c.Redirect("/account", fiber.StatusSeeOther)
}

// GET /admin/login
func (h *AuthHandler) AdminLoginForm(c *fiber.Ctx) error {
	if stateOf(c).IsAdmin {
		return c.Redirect("/admin")
	}
	return render(c, "admin/login", fiber.Map{})
}

// POST /admin/login
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	email := c.FormValue("email")
	if err := h.API.AdminLogin(c.UserContext(), email, c.FormValue("password")); err != nil {
		applog.Security(c, "admin.login.fail", map[string]any{"email": email})
		return render(c.Status(fiber.StatusUnauthorized), "admin/login", fiber.Map{
			"Err":   userMessage(err, "Invalid credentials"),
			"Email": email,
		})
	}
	if err := h.Shell.SetAdmin(stateOf(c), true); err != nil {
		return err
	}
	applog.Audit(c, "admin.login.success", map[string]any{"email": email})
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// POST /admin/logout
func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	if err := h.Shell.SetAdmin(stateOf(c), false); err != nil {
		return err
	}
	applog.Audit(c, "admin.logout", nil)
	return c.Redirect("/admin/login", fiber.StatusSeeOther)
}

// GET /contact
func (h *AuthHandler) ContactForm(c *fiber.Ctx) error {
	data := fiber.Map{}
	if cust := stateOf(c).Customer; cust != nil {
		data["Form"] = services.ContactMessage{Name: cust.Name, Email: cust.Email}
	}
	return render(c, "contact", data)
}

// POST /contact
func (h *AuthHandler) Contact(c *fiber.Ctx) error {
	m := services.ContactMessage{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Subject: c.FormValue("subject"),
		Message: c.FormValue("message"),
	}
	if err := h.Account.Contact(c.UserContext(), m); err != nil {
		return render(c.Status(fiber.StatusBadRequest), "contact", fiber.Map{
			"Err":  userMessage(err, "Could not send your message."),
			"Form": m,
		})
	}
	applog.Info(c, "contact.submit", nil)
	flashOK(c, "Thanks! We will get back to you soon.")
	return c.Redirect("/contact", fiber.StatusSeeOther)
}
