// Package sqlitestore persists grid dashboards in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-dashboard-grid/components/grid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS dashboards (
	id         TEXT PRIMARY KEY,
	uuid       TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	is_locked  INTEGER NOT NULL DEFAULT 0,
	data_json  TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT ''
)`

var errMissingID = errors.New("sqlitestore: dashboard id required")

// Store implements grid.DashboardStore on a *sql.DB.
type Store struct {
	db *sql.DB
}

var _ grid.DashboardStore = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" databases are pinned to a single connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database and ensures the schema exists.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get loads a dashboard by id.
func (s *Store) Get(ctx context.Context, id string) (grid.Dashboard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, uuid, created_by, updated_by, is_locked, data_json, created_at, updated_at
		FROM dashboards WHERE id = ?`, id)
	dashboard, err := scanDashboard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Dashboard{}, fmt.Errorf("%w: %s", grid.ErrDashboardNotFound, id)
	}
	return dashboard, err
}

// Save upserts dashboard.
func (s *Store) Save(ctx context.Context, dashboard grid.Dashboard) error {
	if dashboard.ID == "" {
		return errMissingID
	}
	data, err := json.Marshal(dashboard.Data)
	if err != nil {
		return fmt.Errorf("encode dashboard data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO dashboards (id, uuid, created_by, updated_by, is_locked, data_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid = excluded.uuid,
			created_by = excluded.created_by,
			updated_by = excluded.updated_by,
			is_locked = excluded.is_locked,
			data_json = excluded.data_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		dashboard.ID, dashboard.UUID, dashboard.CreatedBy, dashboard.UpdatedBy,
		boolToInt(dashboard.IsLocked), string(data),
		formatTime(dashboard.CreatedAt), formatTime(dashboard.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save dashboard %s: %w", dashboard.ID, err)
	}
	return nil
}

// List returns every dashboard ordered by id.
func (s *Store) List(ctx context.Context) ([]grid.Dashboard, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, uuid, created_by, updated_by, is_locked, data_json, created_at, updated_at
		FROM dashboards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	defer rows.Close()

	var out []grid.Dashboard
	for rows.Next() {
		dashboard, err := scanDashboard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dashboard)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDashboard(row scanner) (grid.Dashboard, error) {
	var (
		d                    grid.Dashboard
		locked               int
		data                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&d.ID, &d.UUID, &d.CreatedBy, &d.UpdatedBy, &locked, &data, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grid.Dashboard{}, err
		}
		return grid.Dashboard{}, fmt.Errorf("scan dashboard: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &d.Data); err != nil {
		return grid.Dashboard{}, fmt.Errorf("decode dashboard %s: %w", d.ID, err)
	}
	d.IsLocked = locked != 0
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return d, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
