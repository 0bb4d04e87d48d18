package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	dbstore "github.com/soaringjerry/Align/internal/db"
	"github.com/soaringjerry/Align/internal/services"
)

// MigrateIfNeeded creates the SQLite database on first run and seeds it from
// fixturesPath. An existing database file is left untouched.
func MigrateIfNeeded(fixturesPath, sqlitePath, migrationsDir string, gen services.IDGenerator, logger *slog.Logger) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already migrated
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	logger.Info("first run detected, creating database", "path", sqlitePath)
	if dir := filepath.Dir(sqlitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	st, err := dbstore.Open(sqlitePath, migrationsDir, logger)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close sqlite db", "err", cerr)
		}
	}()

	if fixturesPath == "" {
		return nil
	}
	if err := seedFromFile(st, fixturesPath, gen); err != nil {
		// leave no half-seeded database behind
		_ = st.Close()
		for _, p := range []string{sqlitePath, sqlitePath + "-wal", sqlitePath + "-shm"} {
			_ = os.Remove(p)
		}
		return err
	}
	logger.Info("database seeded", "fixtures", fixturesPath)
	return nil
}
