package database

import (
	"strings"

	"wager-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from DSN. "sqlite:" / "file:" / ":memory:" DSNs use the
// pure-Go SQLite driver; anything else is treated as a Postgres URL.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind poolers such as PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	if isSQLite(dsn) {
		return OpenSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// OpenSQLite opens a SQLite database. The pool is pinned to one connection so
// every query, in or out of a transaction, sees the same database; for
// ":memory:" that is the only way the schema survives between calls.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate creates or updates every ledger table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Game{},
		&domain.Bet{},
		&domain.BetHolding{},
		&domain.WinningBet{},
		&domain.Account{},
		&domain.Transfer{},
		&domain.LedgerEvent{},
	)
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "sqlite:") || strings.HasPrefix(dsn, "file:") || dsn == ":memory:"
}
