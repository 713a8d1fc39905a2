package database

import (
	"context"
	"fmt"
	"time"
)

type RefreshHistoryRow struct {
	At        time.Time
	Commodity string
	Outcome   string
	Hours     int
	Error     string
}

func (d *Database) SaveRefreshHistory(ctx context.Context, r RefreshHistoryRow) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO refresh_history (at, commodity, outcome, hours, error)
		VALUES (?, ?, ?, ?, ?)`,
		r.At.UTC().Format(time.RFC3339),
		r.Commodity,
		r.Outcome,
		r.Hours,
		r.Error)
	if err != nil {
		return fmt.Errorf("saving refresh history: %w", err)
	}
	return nil
}

func (d *Database) GetRefreshHistory(ctx context.Context, limit int) ([]RefreshHistoryRow, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT at, commodity, outcome, hours, error
		FROM refresh_history
		ORDER BY id DESC
		LIMIT ?`, limit)

	if err != nil {
		return nil, fmt.Errorf("fetching refresh history: %w", err)
	}
	defer rows.Close()

	var at string
	var entries []RefreshHistoryRow
	for rows.Next() {
		var r RefreshHistoryRow
		err := rows.Scan(&at, &r.Commodity, &r.Outcome, &r.Hours, &r.Error)
		if err != nil {
			return nil, err
		}
		r.At, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading refresh history rows: %w", err)
	}

	return entries, nil
}

func (d *Database) PurgeRefreshHistory(ctx context.Context, retentionDays int) error {
	d.logger.Debug("purging refresh history")
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	_, err := d.write.ExecContext(ctx, `
		DELETE FROM refresh_history WHERE at < ?`, cutoff.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("purging refresh history: %w", err)
	}
	return nil
}
