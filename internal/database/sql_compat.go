package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/goatkit/incidentquery/internal/config"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

// NormalizeDriver maps a configured driver name, including common aliases,
// to the registered database/sql driver name.
func NormalizeDriver(name string) (string, error) {
	switch driver := config.CanonicalDriver(name); driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// PrepareDSN adjusts a DSN so timestamps round-trip as UTC time.Time values.
// MySQL needs parseTime for DATETIME columns; the other drivers already
// return time.Time.
func PrepareDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// isMemoryDSN reports whether a sqlite DSN names a private in-memory
// database, which only lives as long as its single connection.
func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || (strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, "cache=shared"))
}
