package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fonthunter/internal/models"
)

const huntRecordColumns = `id, font_name, slug, success, strategy, source_url, file_path, format,
	confidence, fetch_attempts, report_path, duration_ms, created_at`

// CreateHuntRecord stores a finished hunt. CreatedAt is set by the database.
func (d *DB) CreateHuntRecord(ctx context.Context, r *models.HuntRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO hunt_records (id, font_name, slug, success, strategy, source_url, file_path,
			format, confidence, fetch_attempts, report_path, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, r.ID, r.FontName, r.Slug, r.Success, r.Strategy, r.SourceURL, r.FilePath,
		r.Format, r.Confidence, r.FetchAttempts, r.ReportPath, r.DurationMS,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hunt record: %w", err)
	}
	return nil
}

// GetHuntRecord returns a single hunt by ID.
func (d *DB) GetHuntRecord(ctx context.Context, id uuid.UUID) (*models.HuntRecord, error) {
	row := d.Pool.QueryRow(ctx, `SELECT `+huntRecordColumns+` FROM hunt_records WHERE id = $1`, id)
	r, err := scanHuntRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHuntNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListHuntRecords returns the most recent hunts, newest first. A non-empty
// slug restricts the list to one font.
func (d *DB) ListHuntRecords(ctx context.Context, slug string, limit int) ([]models.HuntRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT `+huntRecordColumns+`
		FROM hunt_records
		WHERE $1 = '' OR slug = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, slug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.HuntRecord
	for rows.Next() {
		r, err := scanHuntRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func scanHuntRecord(row pgx.Row) (*models.HuntRecord, error) {
	var r models.HuntRecord
	err := row.Scan(&r.ID, &r.FontName, &r.Slug, &r.Success, &r.Strategy, &r.SourceURL, &r.FilePath,
		&r.Format, &r.Confidence, &r.FetchAttempts, &r.ReportPath, &r.DurationMS, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
