package store

import (
	"fmt"
	"io/fs"
	"strings"

	"leadscout/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// database driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies pending schema migrations from fsys/dir against the
// database at url. Idempotent, already-applied versions are skipped
func Migrate(fsys fs.FS, dir, url string, log logger.Logger) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(url))
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn().Err(srcErr).Msg("migrate source close")
		}
		if dbErr != nil {
			log.Warn().Err(dbErr).Msg("migrate db close")
		}
	}()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info().Msg("schema up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	v, _, _ := m.Version()
	log.Info().Uint("version", v).Msg("schema migrated")
	return nil
}

// migrateURL rewrites a postgres:// URL to golang-migrate's pgx5 scheme
func migrateURL(url string) string {
	for _, p := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(url, p) {
			return "pgx5://" + strings.TrimPrefix(url, p)
		}
	}
	return url
}
