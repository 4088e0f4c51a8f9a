package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/ports"
)

const (
	staleDraftsTable   = "stale_drafts"
	reviewActionsTable = "review_actions"
)

// PostgresRepository persists sweep results and reviewer actions into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReviewLedger = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres through lib/pq.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// AlreadyFlagged returns the titles that an earlier sweep already recorded.
func (r *PostgresRepository) AlreadyFlagged(ctx context.Context, titles []string) (map[string]bool, error) {
	if r.db == nil || len(titles) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("title").
		From(staleDraftsTable).
		Where("title = ANY(?)", pq.StringArray(titles)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flagged query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flagged: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan title: %w", err)
		}
		result[title] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveFlagged upserts a stale draft detected by a sweep.
func (r *PostgresRepository) SaveFlagged(ctx context.Context, draft domain.StaleDraft) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(staleDraftsTable).
		Columns("title", "last_modified", "detected_at", "run_id").
		Values(draft.Title, draft.LastModified, draft.DetectedAt, draft.RunID).
		Suffix("ON CONFLICT (title) DO UPDATE SET last_modified = EXCLUDED.last_modified, detected_at = EXCLUDED.detected_at, run_id = EXCLUDED.run_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build flagged upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert flagged: %w", err)
	}
	return nil
}

// RecordAction appends a reviewer action to the history table.
func (r *PostgresRepository) RecordAction(ctx context.Context, action domain.ReviewAction) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(reviewActionsTable).
		Columns("title", "status", "summary", "revision_id", "performed_at").
		Values(action.Title, string(action.Status), action.Summary, action.RevisionID, action.PerformedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build action insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}
