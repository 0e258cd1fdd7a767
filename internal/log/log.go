package log

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Logger is the sink every helper writes to. Tests may swap its Out.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	return l
}

func entry(c *fiber.Ctx, level string, fields map[string]any) *logrus.Entry {
	e := Logger.WithField("kind", level)
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "info", fields).Info(action)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "audit", fields).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "security", fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, "error", fields).WithError(err).Error(action)
}

// Background logs work that outlives its request, such as email dispatch.
func Background(action string, err error, fields map[string]any) {
	e := entry(nil, "background", fields)
	if err != nil {
		e.WithError(err).Warn(action)
		return
	}
	e.Info(action)
}
