package bootstrap

import (
	"wager-backend/internal/config"
	"wager-backend/internal/interfaces/router"
	"wager-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New loads configuration, sets up logging and builds the Fiber app. The
// caller owns the returned resources and must Close them on shutdown.
func New() (*fiber.App, *config.Config, *router.Resources, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Setup(cfg.Env, cfg.LogLevel)
	app, res, err := router.CreateApp(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, cfg, res, nil
}
