package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Migration is one schema step, applied once in version order.
type Migration struct {
	Version string
	Up      string
}

// AllMigrations lists the journal schema history, oldest first.
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: `CREATE TABLE IF NOT EXISTS entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            at TEXT NOT NULL,
            action TEXT NOT NULL,
            member_id TEXT NOT NULL DEFAULT '',
            item_id TEXT NOT NULL DEFAULT '',
            outcome TEXT NOT NULL CHECK (outcome IN ('success','error','info')),
            message TEXT NOT NULL
        );`,
	},
	{
		Version: "1.1.0",
		Up: `CREATE INDEX IF NOT EXISTS idx_entries_member ON entries(member_id, id);
        CREATE INDEX IF NOT EXISTS idx_entries_item ON entries(item_id, id);`,
	},
}

// CurrentSchemaVersion is the version of the last migration.
func CurrentSchemaVersion() string {
	return AllMigrations[len(AllMigrations)-1].Version
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	// WAL improves write concurrency for file-backed journals; in-memory
	// databases silently keep their own mode.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	applied := false
	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		current = v
		applied = true
	}
	if !applied {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, current.String()); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema_version';`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && raw == "") {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid schema version %q: %w", raw, err)
	}
	return v, nil
}
