package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Outcome classifies a journal entry.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeInfo    Outcome = "info"
)

// Entry is one line of the circulation activity log.
type Entry struct {
	ID       int64     `json:"id"`
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	MemberID string    `json:"member_id,omitempty"`
	ItemID   string    `json:"item_id,omitempty"`
	Outcome  Outcome   `json:"outcome"`
	Message  string    `json:"message"`
}

// Journal is the SQLite-backed activity log of the circulation desk.
type Journal struct {
	db *sql.DB

	appendStmt *sql.Stmt
}

// Open opens (or creates) the journal at dsn, applies schema migrations and
// prepares the insert statement. dsn is either a file path or a SQLite URI
// such as ":memory:" or "file:circulation?mode=memory&cache=shared".
func Open(ctx context.Context, dsn string) (*Journal, error) {
	if isFilePath(dsn) {
		// Ensure directory exists so first-run succeeds.
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("journal: create dir: %w", err)
			}
		}
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite: %w", err)
	}
	// One connection keeps in-memory databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys=ON;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: %w", err)
	}

	j := &Journal{db: db}
	if j.appendStmt, err = db.PrepareContext(ctx,
		`INSERT INTO entries(at,action,member_id,item_id,outcome,message) VALUES(?,?,?,?,?,?)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: prepare: %w", err)
	}
	return j, nil
}

func isFilePath(dsn string) bool {
	return dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

// Close releases the prepared statement and closes the DB.
func (j *Journal) Close() error {
	if j.appendStmt != nil {
		j.appendStmt.Close()
	}
	return j.db.Close()
}

// Append stores e and returns its id. A zero At is stamped with the current time.
func (j *Journal) Append(ctx context.Context, e Entry) (int64, error) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeInfo
	}
	res, err := j.appendStmt.ExecContext(ctx,
		e.At.UTC().Format(time.RFC3339Nano), e.Action, e.MemberID, e.ItemID, string(e.Outcome), e.Message)
	if err != nil {
		return 0, fmt.Errorf("journal: append: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id,at,action,member_id,item_id,outcome,message FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return scanEntries(rows)
}

// ByMember returns every entry about memberID, oldest first.
func (j *Journal) ByMember(ctx context.Context, memberID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id,at,action,member_id,item_id,outcome,message FROM entries WHERE member_id=? ORDER BY id ASC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("journal: by member: %w", err)
	}
	return scanEntries(rows)
}

// ByItem returns every entry about itemID, oldest first.
func (j *Journal) ByItem(ctx context.Context, itemID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id,at,action,member_id,item_id,outcome,message FROM entries WHERE item_id=? ORDER BY id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("journal: by item: %w", err)
	}
	return scanEntries(rows)
}

func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			at      string
			outcome string
		)
		if err := rows.Scan(&e.ID, &at, &e.Action, &e.MemberID, &e.ItemID, &outcome, &e.Message); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("journal: entry %d: bad timestamp %q: %w", e.ID, at, err)
		}
		e.At = t
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
