package query

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
)

const (
	TableDatabaseVersion = "database_version"
	// SchemaVersion is the state database version this build migrates to.
	SchemaVersion = 1
)

func (db *Database) GetDbVersion() (int, error) {
	var dbVersion int
	query := "SELECT db_version FROM database_version LIMIT 1"
	err := db.Get(&dbVersion, query)
	if err != nil {
		return 0, fmt.Errorf("GetDbVersion: %w", err)
	}
	return dbVersion, nil
}

func (db *Database) TableExists(tableName string) (bool, error) {
	query := `
		SELECT count(name)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`

	var count int
	err := db.QueryRow(query, tableName).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// InitDatabase opens or creates the service's own state database and migrates it.
// An empty path or ":memory:" keeps the state in memory.
func InitDatabase(driver, path string) (*Database, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("InitDatabase: %w", err)
		}
	}
	dbTemp, err := sqlx.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("InitDatabase: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		dbTemp.SetMaxOpenConns(1)
	}

	db := NewDatabase(dbTemp)

	exist, err := db.TableExists(TableDatabaseVersion)
	if err != nil {
		dbTemp.Close()
		return nil, fmt.Errorf("InitDatabase: %w", err)
	}
	if !exist {
		_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS database_version (
			db_version INTEGER default 0);
		INSERT INTO database_version VALUES(0);`)
		if err != nil {
			dbTemp.Close()
			return nil, fmt.Errorf("InitDatabase: %w", err)
		}
	}
	if err := db.updateDb(); err != nil {
		dbTemp.Close()
		return nil, err
	}
	return db, nil
}

func (db *Database) updateDb() error {
	dbVersion, err := db.GetDbVersion()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	if dbVersion >= SchemaVersion {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	if dbVersion < 1 {
		_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			target REAL NOT NULL,
			period TEXT NOT NULL,
			priority TEXT NOT NULL,
			apps TEXT NOT NULL DEFAULT '',
			categories TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("updateDb version 1: %w", err)
		}
		_, err = tx.Exec(`UPDATE database_version SET db_version=1`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("updateDb version 1: %w", err)
		}
		slog.Info("state_db_migrated", "version", 1)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("updateDb: error at commit rollback: %w", err)
	}
	return nil
}
