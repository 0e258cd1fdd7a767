package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "steeze/internal/log"
)

// RequireAdmin lets operators through and sends everyone else to the
// admin login page.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := stateOf(c)
		if st == nil || !st.IsAdmin {
			applog.Security(c, "access.denied.admin", nil)
			if c.Method() != fiber.MethodGet {
				return notFound(c, fiber.StatusForbidden, "Access denied")
			}
			return c.Redirect("/admin/login")
		}
		return c.Next()
	}
}

// RequireUser enforces that a customer is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := stateOf(c)
		if st == nil || !st.LoggedIn() {
			return c.Redirect("/login?next=" + c.Path())
		}
		return c.Next()
	}
}
