package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one line per request once the handler chain has run:
// who called, what they hit, the status the ledger answered with, and how
// long it took. Failed wagers (4xx) log at warn, server faults at error.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		l := zerolog.Ctx(c.UserContext())
		if l.GetLevel() == zerolog.Disabled {
			l = &log.Logger
		}
		ev := l.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		}
		principal := "anonymous"
		if p := GetPrincipal(c); !p.IsZero() {
			principal = p.String()
		} else if rejected, _ := c.Locals(rejectedLocal).(bool); rejected {
			principal = "rejected"
		}
		ev.Str("principal", principal).
			Str("method", c.Method()).
			Str("route", c.Route().Path).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return err
	}
}
