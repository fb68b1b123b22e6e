package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EnqueueArtists adds artists to the crawl queue. Already queued artists keep
// their finished flag.
func (s *Store) EnqueueArtists(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO artist_queue (artist_id) VALUES (?)
			ON CONFLICT(artist_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare enqueue: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return classifyWriteError("artist_queue", err)
			}
		}
		return nil
	})
}

// PendingArtists returns queued artists whose catalog has not been stored yet
func (s *Store) PendingArtists(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist_id FROM artist_queue
		WHERE finished = 0
		ORDER BY queued_at, artist_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending artists: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// QueueCounts returns the number of finished and pending queue entries
func (s *Store) QueueCounts(ctx context.Context) (finished, pending int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(CASE WHEN finished = 1 THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN finished = 0 THEN 1 ELSE 0 END), 0)
		FROM artist_queue
	`).Scan(&finished, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return finished, pending, nil
}

func markArtistFinished(ctx context.Context, tx *sql.Tx, artistID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO artist_queue (artist_id, finished, finished_at) VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(artist_id) DO UPDATE SET finished = 1, finished_at = CURRENT_TIMESTAMP
	`, artistID)
	if err != nil {
		return fmt.Errorf("failed to mark artist %d finished: %w", artistID, err)
	}
	return nil
}
