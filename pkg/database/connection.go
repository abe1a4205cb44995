// -----------------------------------------------------------------------------
// Database Package
// -----------------------------------------------------------------------------
// MySQL connection for the circles table. Tickets, staff and the ledger live
// in the in-memory stores; only circle applications go to MySQL.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig holds the connection pool settings.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultMySQLConfig returns the pool defaults for dsn.
func DefaultMySQLConfig(dsn string) *MySQLConfig {
	return &MySQLConfig{
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// NormalizeDSN parses dsn and forces the options the repositories rely on:
// DATETIME columns scan into time.Time, and UPDATE reports matched rows so an
// unchanged row is not mistaken for a missing one.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid DB_DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// Connect opens the pool and pings the server:
//  1. normalize the DSN
//  2. open the pool and apply its limits
//  3. ping with a timeout; the pool is closed if the server is unreachable
func Connect(config *MySQLConfig, logger *log.Logger) (*sql.DB, error) {
	dsn, err := NormalizeDSN(config.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	logger.Println("Connecting to MySQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Printf("❌ MySQL connection failed: %v", err)
		return nil, fmt.Errorf("mysql connection failed: %w", err)
	}

	logger.Println("✅ MySQL connection established")
	return db, nil
}
