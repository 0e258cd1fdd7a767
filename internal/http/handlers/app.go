package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"steeze/internal/config"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

func isAsset(c *fiber.Ctx) bool {
	p := string(c.Request().URI().Path())
	return strings.HasPrefix(p, "/static/") || p == "/healthz"
}

// ErrorHandler logs and shows a friendly page; internals never leak.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		switch code {
		case fiber.StatusNotFound:
			msg = "Page not found"
		case fiber.StatusRequestEntityTooLarge:
			msg = "That upload is too large."
		case fiber.StatusMethodNotAllowed:
			msg = "Page not found"
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := render(c.Status(code), "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the storefront and admin application.
func NewApp(deps *Deps, cfg config.Config) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")
	for name, fn := range Funcs() {
		engine.AddFunc(name, fn)
	}

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler,
		// Receipts are the largest body; leave room for the multipart envelope.
		BodyLimit: cfg.MaxUploadBytes() + 64<<10,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Logger.Out}))
	app.Use(helmet.New(helmet.Config{
		// Admin views embed receipt images served by the API host.
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RatePerMinute,
		Expiration: time.Minute,
		Next:       isAsset,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	session := Session(deps.Shell, deps.API, cfg.CookieSecure)
	app.Use(func(c *fiber.Ctx) error {
		if isAsset(c) {
			return c.Next()
		}
		return session(c)
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return notFound(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", cfg.StaticDir)

	Routes(app, deps)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}

// Routes mounts every page and action.
func Routes(app *fiber.App, deps *Deps) {
	// Storefront
	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/products", deps.SearchHandler.Search)
	app.Get("/category/:name", deps.CategoryHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Post("/product/:id/reviews", deps.ProductHandler.Review)
	app.Post("/currency", deps.CartHandler.Currency)
	app.Get("/contact", deps.AuthHandler.ContactForm)
	app.Post("/contact", deps.AuthHandler.Contact)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.InventoryHandler.Check)

	// Cart & checkout
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/add", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/adjust", deps.CartHandler.Adjust)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	co := deps.CheckoutHandler
	app.Get("/checkout", co.View)
	app.Post("/checkout/proceed", co.Proceed)
	app.Post("/checkout/details", co.Details)
	app.Post("/checkout/back", co.Back)
	app.Post("/checkout/confirm", co.Confirm)
	app.Post("/checkout/upload", co.Upload)
	app.Post("/checkout/later", co.Later)
	app.Post("/checkout/new", co.New)

	// Customer auth (login throttled)
	authH := deps.AuthHandler
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			tmpl := "login"
			if strings.HasPrefix(c.Path(), "/admin") {
				tmpl = "admin/login"
			}
			return render(c.Status(fiber.StatusTooManyRequests), tmpl, fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	app.Get("/login", authH.LoginForm)
	app.Post("/login", loginLimiter, authH.Login)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Get("/reset", authH.ResetForm)
	app.Post("/reset", loginLimiter, authH.Reset)
	app.Post("/logout", authH.Logout)

	// Account
	acct := app.Group("/account", RequireUser())
	acct.Get("/", deps.OrderHandler.History)
	acct.Get("/orders/:id", deps.OrderHandler.View)
	acct.Post("/orders/:id/receipt", deps.OrderHandler.Upload)
	acct.Get("/password", authH.PasswordForm)
	acct.Post("/password", authH.ChangePassword)

	// Admin
	app.Get("/admin/login", authH.AdminLoginForm)
	app.Post("/admin/login", loginLimiter, authH.AdminLogin)

	adminH := deps.AdminHandler
	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/", adminH.Home)
	admin.Post("/logout", authH.AdminLogout)
	for _, tab := range services.Tabs[1:] {
		admin.Get("/"+tab, adminH.tabRedirect(tab))
	}

	admin.Get("/products/new", adminH.NewProduct)
	admin.Get("/products/:id/edit", adminH.EditProduct)
	admin.Post("/products", adminH.SaveProduct)
	admin.Post("/products/:id/delete", adminH.DeleteProduct)
	admin.Post("/reviews/:id/delete", adminH.DeleteReview)
	admin.Post("/settings", adminH.SaveSettings)

	admin.Get("/orders/:id", adminH.Order)
	admin.Post("/orders/:id/action", adminH.Action)
	admin.Post("/orders/:id/edit", adminH.Edit)
	admin.Post("/orders/:id/nudge", adminH.Nudge)
	admin.Post("/orders/:id/receipt", adminH.Upload)
}
