package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_medical_documents",
		SQL: `CREATE TABLE IF NOT EXISTS medical_documents (
  id            TEXT        PRIMARY KEY,
  clinic_id     TEXT        NOT NULL,
  patient_id    TEXT        NOT NULL,
  file_name     TEXT        NOT NULL,
  file_type     TEXT        NOT NULL,
  file_size     BIGINT      NOT NULL CHECK (file_size >= 0),
  file_path     TEXT        NOT NULL,
  document_type TEXT        NOT NULL,
  description   TEXT        NOT NULL DEFAULT '',
  uploaded_by   TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  storage_type  TEXT        NOT NULL DEFAULT 'local',
  bucket_name   TEXT        NOT NULL DEFAULT '',
  object_name   TEXT        NOT NULL DEFAULT '',
  document_id   TEXT        NOT NULL DEFAULT '',
  etag          TEXT        NOT NULL DEFAULT '',
  migrated_at   TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_medical_documents_clinic_patient",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_medical_documents_clinic_patient ON medical_documents (clinic_id, patient_id);`,
	},
	{
		Name: "create_index_medical_documents_storage_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_medical_documents_storage_type ON medical_documents (clinic_id, storage_type);`,
	},
	{
		Name: "create_index_medical_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_medical_documents_created_at ON medical_documents (created_at);`,
	},
}

// EnsureMigrated checks if the 'medical_documents' table exists and runs the
// schema steps if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.medical_documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logJSON(map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"level":         "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(map[string]any{
			"component": "database",
			"event":     "db_migration_skip",
			"msg":       "schema already exists, skipping migration",
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logJSON(map[string]any{
				"component":      "database",
				"event":          "db_migration_failed",
				"level":          "error",
				"migration_step": step.Name,
				"error_message":  err.Error(),
				"duration_ms":    time.Since(start).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
