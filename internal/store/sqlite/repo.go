// Package sqlite implements the event store on an embedded SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/sensitivity"
	"github.com/GriffinCanCode/glimpse/internal/store"
)

const driverName = "sqlite"

// DefaultSearchLimit bounds Search when the query leaves Limit unset.
const DefaultSearchLimit = 50

// Repository is a SQLite-backed event store.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.New(apperrors.ConfigInvalid, "sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.StoreInitFailed, "create sqlite dir")
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.StoreInitFailed, "open sqlite")
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a throwaway in-memory database, used in tests.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.StoreInitFailed, "open sqlite memory")
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			ts_start INTEGER NOT NULL,
			ts_end INTEGER NOT NULL,
			app_bundle TEXT NOT NULL,
			app_name TEXT NOT NULL,
			window_title TEXT NOT NULL,
			summary TEXT NOT NULL,
			tags_json TEXT NOT NULL DEFAULT '[]',
			sensitivity_flag INTEGER NOT NULL DEFAULT 0,
			thumbnail_path TEXT,
			text_snippet TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts_start ON events(ts_start);`,
		`CREATE INDEX IF NOT EXISTS idx_events_app_bundle ON events(app_bundle);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Wrap(err, apperrors.StoreInitFailed, "migrate events table")
		}
	}
	return nil
}

// Insert upserts an event by id.
func (r *Repository) Insert(ctx context.Context, ev event.Event) error {
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return apperrors.Wrap(err, apperrors.StoreInsertFailed, "marshal tags")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, ts_start, ts_end, app_bundle, app_name, window_title,
			summary, tags_json, sensitivity_flag, thumbnail_path, text_snippet
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts_start = excluded.ts_start,
			ts_end = excluded.ts_end,
			app_bundle = excluded.app_bundle,
			app_name = excluded.app_name,
			window_title = excluded.window_title,
			summary = excluded.summary,
			tags_json = excluded.tags_json,
			sensitivity_flag = excluded.sensitivity_flag,
			thumbnail_path = excluded.thumbnail_path,
			text_snippet = excluded.text_snippet`,
		ev.ID, ev.Start.Unix(), ev.End.Unix(), ev.BundleID, ev.AppName, ev.WindowTitle,
		ev.Summary, string(tags), int(ev.Sensitivity),
		nullable(ev.ThumbnailPath), nullable(ev.TextSnippet))
	if err != nil {
		return apperrors.Wrap(err, apperrors.StoreInsertFailed, "insert event").WithMetadata("event_id", ev.ID)
	}
	return nil
}

// CountEventsSince counts events whose start is at or after since.
func (r *Repository) CountEventsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE ts_start >= ?`, since.Unix()).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.StoreQueryFailed, "count events")
	}
	return count, nil
}

// Search returns events matching the query, newest first.
func (r *Repository) Search(ctx context.Context, q store.Query) ([]event.Event, error) {
	var where []string
	var args []any

	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		where = append(where, `(summary LIKE ? OR window_title LIKE ? OR text_snippet LIKE ?)`)
		args = append(args, like, like, like)
	}
	if !q.From.IsZero() {
		where = append(where, `ts_start >= ?`)
		args = append(args, q.From.Unix())
	}
	if !q.To.IsZero() {
		where = append(where, `ts_start <= ?`)
		args = append(args, q.To.Unix())
	}
	if q.AppBundle != "" {
		where = append(where, `app_bundle = ?`)
		args = append(args, q.AppBundle)
	}

	query := `SELECT id, ts_start, ts_end, app_bundle, app_name, window_title,
		summary, tags_json, sensitivity_flag, thumbnail_path, text_snippet FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query += " ORDER BY ts_start DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.StoreQueryFailed, "search events")
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.StoreQueryFailed, "iterate events")
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (event.Event, error) {
	var (
		ev              event.Event
		tsStart, tsEnd  int64
		tagsJSON        string
		sensitivityFlag int
		thumb, snippet  sql.NullString
	)
	err := rows.Scan(&ev.ID, &tsStart, &tsEnd, &ev.BundleID, &ev.AppName, &ev.WindowTitle,
		&ev.Summary, &tagsJSON, &sensitivityFlag, &thumb, &snippet)
	if err != nil {
		return event.Event{}, apperrors.Wrap(err, apperrors.StoreQueryFailed, "scan event")
	}

	ev.Start = time.Unix(tsStart, 0)
	ev.End = time.Unix(tsEnd, 0)
	ev.Sensitivity = sensitivity.Level(sensitivityFlag)
	if err := json.Unmarshal([]byte(tagsJSON), &ev.Tags); err != nil {
		return event.Event{}, apperrors.Wrap(err, apperrors.StoreQueryFailed, "unmarshal tags")
	}
	ev.ThumbnailPath = thumb.String
	ev.TextSnippet = snippet.String
	return ev, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
