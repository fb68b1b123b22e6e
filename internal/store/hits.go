package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveSearchHits inserts sweep hits; a song already recorded keeps the
// search that found it first. Returns the number of new hits.
func (s *Store) SaveSearchHits(ctx context.Context, hits []SearchHit) (int, error) {
	if len(hits) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO search_hits (song_id, search_term, search_kind, song_name, artist_names, artist_ids,
			                         album_id, album_name, publish_time, copyright_id, fee, own)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(song_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare search hit insert: %w", err)
		}
		defer stmt.Close()

		for _, h := range hits {
			res, err := stmt.ExecContext(ctx, h.SongID, h.SearchTerm, h.SearchKind, h.SongName, h.ArtistNames, h.ArtistIDs,
				h.AlbumID, h.AlbumName, h.PublishTime, nullInt64(h.CopyrightID), h.Fee, h.Own)
			if err != nil {
				return classifyWriteError("search_hits", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

// ListSearchHits returns stored hits ordered by search term. Hits on the
// audited artist's own catalog are excluded unless includeOwn is set.
func (s *Store) ListSearchHits(ctx context.Context, includeOwn bool) ([]SearchHit, error) {
	query := `
		SELECT song_id, search_term, search_kind, song_name, artist_names, artist_ids,
		       album_id, album_name, publish_time, copyright_id, fee, own
		FROM search_hits`
	if !includeOwn {
		query += " WHERE own = 0"
	}
	query += " ORDER BY search_term, song_id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query search hits: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var name, artists, artistIDs, album sql.NullString
		var cp sql.NullInt64
		if err := rows.Scan(&h.SongID, &h.SearchTerm, &h.SearchKind, &name, &artists, &artistIDs,
			&h.AlbumID, &album, &h.PublishTime, &cp, &h.Fee, &h.Own); err != nil {
			return nil, err
		}
		h.SongName = name.String
		h.ArtistNames = artists.String
		h.ArtistIDs = artistIDs.String
		h.AlbumName = album.String
		if cp.Valid {
			v := cp.Int64
			h.CopyrightID = &v
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// CountSearchHits returns stored hits split into foreign and own
func (s *Store) CountSearchHits(ctx context.Context) (foreign, own int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(CASE WHEN own = 0 THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN own = 1 THEN 1 ELSE 0 END), 0)
		FROM search_hits
	`).Scan(&foreign, &own)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count search hits: %w", err)
	}
	return foreign, own, nil
}
