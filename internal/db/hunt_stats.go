package db

import (
	"context"

	"fonthunter/internal/models"
)

// IncrementHuntStat upserts a hunt count for a strategy and outcome.
func (d *DB) IncrementHuntStat(ctx context.Context, strategy, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO hunt_stats (strategy, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (strategy, outcome) DO UPDATE
		SET count = hunt_stats.count + 1, last_seen_at = NOW()
	`, strategy, outcome)
	return err
}

// GetAllHuntStats returns all hunt stat rows for metrics export.
func (d *DB) GetAllHuntStats(ctx context.Context) ([]models.HuntStat, error) {
	rows, err := d.Pool.Query(ctx, `SELECT strategy, outcome, count, last_seen_at FROM hunt_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.HuntStat
	for rows.Next() {
		var s models.HuntStat
		if err := rows.Scan(&s.Strategy, &s.Outcome, &s.Count, &s.LastSeenAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
