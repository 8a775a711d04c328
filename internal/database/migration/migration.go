package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.document_summaries"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            TEXT        PRIMARY KEY,
  name          TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  role          TEXT        NOT NULL DEFAULT 'user',
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id             TEXT        PRIMARY KEY,
  title          TEXT        NOT NULL,
  description    TEXT        NOT NULL DEFAULT '',
  department     TEXT        NOT NULL,
  priority       TEXT        NOT NULL DEFAULT 'none',
  tags           JSONB       NOT NULL DEFAULT '[]',
  upload_date    TIMESTAMPTZ NOT NULL DEFAULT now(),
  file_type      TEXT        NOT NULL,
  file_name      TEXT        NOT NULL,
  file_size      BIGINT      NOT NULL CHECK (file_size >= 0),
  file_path      TEXT        NOT NULL UNIQUE,
  extracted_text TEXT        NOT NULL DEFAULT '',
  user_id        TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_documents_upload_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_upload_date ON documents (upload_date DESC, id DESC);`,
	},
	{
		Name: "create_index_documents_department",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_department ON documents (department);`,
	},
	{
		// document_id is a weak reference: notifications outlive the documents they mention.
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id             TEXT        PRIMARY KEY,
  type           TEXT        NOT NULL DEFAULT 'info',
  category       TEXT        NOT NULL DEFAULT '',
  priority       TEXT        NOT NULL,
  title          TEXT        NOT NULL,
  message        TEXT        NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  document_id    TEXT        NULL,
  document_title TEXT        NULL,
  is_read        BOOLEAN     NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_index_notifications_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at DESC);`,
	},
	{
		Name: "create_index_notifications_unread",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (is_read) WHERE NOT is_read;`,
	},
	{
		Name: "create_table_document_summaries",
		SQL: `CREATE TABLE IF NOT EXISTS document_summaries (
  document_id TEXT        PRIMARY KEY REFERENCES documents (id) ON DELETE CASCADE,
  summary     TEXT        NOT NULL,
  key_points  JSONB       NOT NULL DEFAULT '[]',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated creates the schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	start := time.Now()

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
