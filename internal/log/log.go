// Package log is the application's action log facade: structured entries
// keyed by an action name ("order.place.fail", "csrf.fail"), enriched with
// request metadata when a fiber context is at hand.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the global level and, for dev, pretty console output.
func Setup(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	logger = out.Level(lvl).With().Timestamp().Logger()
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, fields map[string]any) {
	if c != nil {
		ev = ev.Str("ip", c.IP()).Str("method", c.Method()).Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Str("action", action).Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info(), c, action, fields)
}

// Audit records state-changing admin/user actions.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info().Str("kind", "audit"), c, action, fields)
}

// Security records denials, validation failures and rate-limit hits.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Warn().Str("kind", "security"), c, action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	ev := logger.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	write(ev, c, action, fields)
}
