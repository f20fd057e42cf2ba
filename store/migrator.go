package store

import (
	"context"
	"embed"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hrygo/duebot/internal/version"
)

// Migration System Overview:
//
// Every driver ships one idempotent schema, migration/{driver}/LATEST.sql,
// written with IF NOT EXISTS clauses. Migrate applies it on each start and
// records the running version under the schema_version system setting.
// A database stamped by a newer release is refused.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the schema file applied by Migrate.
	LatestSchemaFileName = "LATEST.sql"
	// SchemaVersionSetting is the system_setting row holding the schema version.
	SchemaVersionSetting = "schema_version"
)

// Migrate brings the journal schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	schema, err := latestSchema(s.driver.Type())
	if err != nil {
		return err
	}
	if err := s.driver.Migrate(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	current := version.GetCurrentVersion()
	stored, err := s.driver.GetSystemSetting(ctx, SchemaVersionSetting)
	if err != nil {
		return errors.Wrap(err, "failed to get schema version")
	}
	if stored != "" && version.IsVersionGreaterThan(stored, current) {
		slog.Error("cannot downgrade schema version",
			slog.String("databaseVersion", stored),
			slog.String("currentVersion", current),
		)
		return errors.Errorf("cannot downgrade schema version from %s to %s", stored, current)
	}

	if stored == "" || !version.IsVersionGreaterOrEqualThan(stored, current) {
		if err := s.driver.UpsertSystemSetting(ctx, SchemaVersionSetting, current); err != nil {
			return errors.Wrap(err, "failed to update schema version")
		}
		slog.Info("journal schema migrated", slog.String("from", stored), slog.String("to", current))
	}
	return nil
}

func latestSchema(driver string) (string, error) {
	path := filepath.ToSlash(filepath.Join("migration", driver, LatestSchemaFileName))
	buf, err := migrationFS.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read schema file %s", path)
	}
	return string(buf), nil
}
