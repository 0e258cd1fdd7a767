package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"steeze/internal/apiclient"
	"steeze/internal/checkout"
	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

const (
	sidCookie   = "sid"
	flashCookie = "flash"
)

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
			MaxAge:   60 * 60 * 24 * 90,
		})
	}
	return sid
}

// Session loads the shell state for every request. Site settings are
// fetched on first use; a settings failure degrades to defaults.
func Session(shell *services.Shell, api *apiclient.Client, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c, secure)
		st, err := shell.Load(sid)
		if err != nil {
			return err
		}
		c.Locals("state", st)
		c.Locals("settingsLoader", func() domain.Settings {
			s, err := api.GetSettings(c.UserContext())
			if err != nil {
				applog.Error(c, "settings.load.fail", err, nil)
				return domain.Settings{}
			}
			return s
		})
		return c.Next()
	}
}

func stateOf(c *fiber.Ctx) *services.State {
	st, _ := c.Locals("state").(*services.State)
	return st
}

func settingsOf(c *fiber.Ctx) domain.Settings {
	if s, ok := c.Locals("settings").(domain.Settings); ok {
		return s
	}
	s := domain.Settings{}
	if load, ok := c.Locals("settingsLoader").(func() domain.Settings); ok {
		s = load()
	}
	c.Locals("settings", s)
	return s
}

// Flash is a one-shot toast carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func flashOK(c *fiber.Ctx, msg string)  { setFlash(c, "success", msg) }
func flashErr(c *fiber.Ctx, msg string) { setFlash(c, "error", msg) }

func takeFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(flashCookie)
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(v, "|")
	if !ok || msg == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: msg}
}

// friendly errors carry text that is safe to show as is.
var friendly = []error{
	checkout.ErrEmptyCart, checkout.ErrInvalidDetails, checkout.ErrWrongStep,
	services.ErrNotInCart, services.ErrNotLoggedIn, services.ErrInvalidRating,
	services.ErrEmptyComment, services.ErrAlreadyReviewed, services.ErrProductNotFound,
	services.ErrInvalidEmail, services.ErrInvalidName, services.ErrWeakPassword,
	services.ErrPasswordMismatch, services.ErrMissingPassword, services.ErrOrderNotFound,
	services.ErrAlreadyPaid, services.ErrEmptyMessage, services.ErrInvalidStatus,
	services.ErrInvalidTransition, services.ErrNoEdit, services.ErrNoSuchLine,
	services.ErrLastLine, services.ErrNoReceipt, services.ErrReceiptExists, services.ErrStatusNotSynced,
	services.ErrSalePrice, services.ErrProductBad, services.ErrBadSetting,
	errBadUpload, errUploadTooBig,
}

// userMessage is the text shown for a failed action.
func userMessage(err error, fallback string) string {
	if msg := apiclient.UserMessage(err, ""); msg != "" {
		return msg
	}
	for _, known := range friendly {
		if errors.Is(err, known) {
			msg := known.Error()
			return strings.ToUpper(msg[:1]) + msg[1:] + "."
		}
	}
	return fallback
}
