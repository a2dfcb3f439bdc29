package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the pure Go modernc driver.
	DriverSQLite = "sqlite"
	// DriverSQLite3 is the cgo mattn driver.
	DriverSQLite3 = "sqlite3"
)

type Database struct {
	*sqlx.DB
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{DB: db}
}

// OpenFrames opens the recorder database read-only.
func OpenFrames(driver, path string) (*Database, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	dbTemp, err := sqlx.Open(driver, fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("OpenFrames: %w", err)
	}
	if err := dbTemp.Ping(); err != nil {
		dbTemp.Close()
		return nil, fmt.Errorf("OpenFrames: %w", err)
	}
	return NewDatabase(dbTemp), nil
}

func (db *Database) selectRows(ctx context.Context, dest any, q string, args ...any) error {
	return db.SelectContext(ctx, dest, q, args...)
}
