package config

import (
	"strings"

	"wager-backend/internal/domain"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string // Postgres URL, or sqlite:/file: DSN for local runs
	AutoMigrate         bool
	RedisURL            string
	KafkaBrokers        string // comma separated; empty disables the Kafka publisher
	KafkaTopic          string
	Operators           []domain.Principal
	Custody             domain.Principal
	PayoutPolicy        string // "placer" (default) or "holders"
	HealthAdminKey      string
	FrontendURLEndsWith string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("KAFKA_TOPIC", "wager.ledger.events")
	viper.SetDefault("PAYOUT_POLICY", "placer")
	viper.SetDefault("AUTO_MIGRATE", true)

	custody := domain.ParsePrincipal(viper.GetString("CUSTODY_PRINCIPAL"))
	if custody.IsZero() {
		custody = domain.DefaultCustodyAccount
	}

	return &Config{
		Env:                 viper.GetString("APP_ENV"),
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		AutoMigrate:         viper.GetBool("AUTO_MIGRATE"),
		RedisURL:            viper.GetString("REDIS_URL"),
		KafkaBrokers:        strings.TrimSpace(viper.GetString("KAFKA_BROKERS")),
		KafkaTopic:          viper.GetString("KAFKA_TOPIC"),
		Operators:           parsePrincipals(viper.GetString("OPERATOR_PRINCIPALS")),
		Custody:             custody,
		PayoutPolicy:        viper.GetString("PAYOUT_POLICY"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func parsePrincipals(s string) []domain.Principal {
	var out []domain.Principal
	for _, part := range strings.Split(s, ",") {
		if p := domain.ParsePrincipal(part); !p.IsZero() {
			out = append(out, p)
		}
	}
	return out
}
