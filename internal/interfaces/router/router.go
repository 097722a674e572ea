package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	eventsvc "wager-backend/internal/application/events"
	healthsvc "wager-backend/internal/application/health"
	holdsvc "wager-backend/internal/application/holdings"
	"wager-backend/internal/application/ledger"
	"wager-backend/internal/application/wallet"
	"wager-backend/internal/config"
	"wager-backend/internal/infrastructure/database"
	"wager-backend/internal/infrastructure/eventbus"
	accounthandler "wager-backend/internal/interfaces/handlers/accounts"
	bethandler "wager-backend/internal/interfaces/handlers/bets"
	gamehandler "wager-backend/internal/interfaces/handlers/games"
	healthhandler "wager-backend/internal/interfaces/handlers/health"
	settlehandler "wager-backend/internal/interfaces/handlers/settlement"
	"wager-backend/internal/metrics"
	"wager-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping(ctx context.Context) error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Resources are the connections opened by CreateApp.
type Resources struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Kafka    *kafka.Writer
	Registry *prometheus.Registry
	Ledger   *ledger.Service
}

// Close releases every connection. Safe to call on a partially built
// Resources.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Kafka != nil {
		errs = append(errs, r.Kafka.Close())
	}
	if r.Rdb != nil {
		errs = append(errs, r.Rdb.Close())
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func CreateApp(cfg *config.Config) (*fiber.App, *Resources, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	payout, err := ledger.ParsePayoutPolicy(cfg.PayoutPolicy)
	if err != nil {
		return nil, nil, err
	}

	res := &Resources{}
	fail := func(err error) (*fiber.App, *Resources, error) {
		_ = res.Close()
		return nil, nil, err
	}

	if res.DB, err = database.Open(cfg.DatabaseURL); err != nil {
		return fail(fmt.Errorf("open database: %w", err))
	}
	log.Info().Str("database", redactDSN(cfg.DatabaseURL)).Msg("database opened")
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(res.DB); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
	}
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("parse REDIS_URL: %w", err))
		}
		res.Rdb = redis.NewClient(opt)
	}

	recorder := &eventsvc.Service{DB: res.DB}
	sinks := eventsvc.Multi{recorder}
	if res.Rdb != nil {
		sinks = append(sinks, eventbus.NewRedisPublisher(res.Rdb))
	}
	var kafkaPinger healthsvc.Pinger
	if cfg.KafkaBrokers != "" {
		res.Kafka = eventbus.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, eventbus.NewKafkaPublisher(res.Kafka))
		kafkaPinger = eventbus.NewKafkaPinger(cfg.KafkaBrokers)
	}

	res.Registry = prometheus.NewRegistry()
	res.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	operators := ledger.NewOperatorSet(cfg.Operators...)
	if len(operators) == 0 {
		log.Warn().Msg("OPERATOR_PRINCIPALS is empty; operator-only routes will reject every caller")
	}
	w := &wallet.Service{DB: res.DB}
	res.Ledger = &ledger.Service{
		DB:        res.DB,
		Funds:     w,
		Operators: operators,
		Events:    sinks,
		Metrics:   metrics.New(res.Registry),
		Custody:   cfg.Custody,
		Payout:    payout,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})
	if cfg.FrontendURLEndsWith != "" {
		app.Use(middleware.CORS(middleware.CORSConfig{AllowedSuffix: cfg.FrontendURLEndsWith}))
	}
	app.Use(middleware.HealthMarker(res.Rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Principal())

	hh := &healthhandler.Handlers{
		Deps: healthsvc.Deps{
			Redis:    res.Rdb,
			Database: &gormDBPinger{db: res.DB},
			Kafka:    kafkaPinger,
		},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(res.Registry, promhttp.HandlerOpts{})))

	requireOperator := middleware.RequireOperator(operators)
	api := app.Group("/api/v1", middleware.RequirePrincipal())

	gh := &gamehandler.Handlers{Ledger: res.Ledger, Events: recorder}
	bh := &bethandler.Handlers{Ledger: res.Ledger}
	sh := &settlehandler.Handlers{Ledger: res.Ledger}

	gg := api.Group("/games")
	gg.Post("", requireOperator, gh.CreateGame)
	gg.Get("/:game_id", gh.GetGame)
	gg.Post("/:game_id/close", requireOperator, gh.CloseGame)
	gg.Get("/:game_id/events", gh.GetGameEvents)
	gg.Post("/:game_id/bets", bh.PlaceBet)
	gg.Delete("/:game_id/bets", bh.RemoveBet)
	gg.Get("/:game_id/bets/:bet_id", bh.GetBet)
	gg.Post("/:game_id/bets/:bet_id/list", bh.ListForSale)
	gg.Post("/:game_id/bets/:bet_id/buy", bh.BuyShares)
	gg.Post("/:game_id/winners", requireOperator, sh.DeclareWinners)
	gg.Post("/:game_id/distribute", requireOperator, sh.DistributeWinnings)

	ah := &accounthandler.Handlers{Wallet: w, Holdings: &holdsvc.Service{DB: res.DB}}
	ag := api.Group("/accounts")
	ag.Post("/deposit", requireOperator, ah.Deposit)
	ag.Get("/:principal", ah.Balance)
	ag.Get("/:principal/transfers", ah.ListTransfers)
	ag.Get("/:principal/holdings", ah.ViewHoldings)

	return app, res, nil
}

// redactDSN hides credentials in a database URL for logging.
func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		if scheme := strings.Index(dsn, "://"); scheme >= 0 && scheme < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}
