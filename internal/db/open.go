package db

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ErrUnknownDriver is returned by Open for drivers other than mysql and sqlite.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Options selects and prepares a relational database.
type Options struct {
	Driver     string // "mysql" or "sqlite"
	MySQLDSN   string
	SQLitePath string
	Reset      bool // drop every content table before migrating
}

// Open connects to the configured database, optionally drops the content
// tables and migrates the schema.
func Open(opts Options) (*gorm.DB, error) {
	var (
		gormDB *gorm.DB
		err    error
	)
	switch opts.Driver {
	case "mysql":
		gormDB, err = NewMySQL(opts.MySQLDSN)
	case "sqlite":
		gormDB, err = NewSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Reset {
		slog.Warn("RESET_DB set, dropping content tables", "driver", opts.Driver)
		if err := Reset(gormDB); err != nil {
			return nil, err
		}
	}
	if err := Migrate(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}
