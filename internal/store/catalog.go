package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/franz/netease-audit/internal/util"
)

// SaveCatalog stores one artist's catalog entries and raw payloads, and marks
// the artist finished in the same transaction. Songs already stored (by any
// artist) are skipped. Returns the number of new songs.
func (s *Store) SaveCatalog(ctx context.Context, artistID int64, entries []CatalogEntry, raw map[int64]string) (int, error) {
	inserted := 0
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		songStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO catalog_songs (song_id, song_name, artist_id, artist_name, album_id, copyright_id, popularity, fee, track_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(song_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare catalog insert: %w", err)
		}
		defer songStmt.Close()

		for _, e := range entries {
			res, err := songStmt.ExecContext(ctx, e.SongID, e.SongName, e.ArtistID, e.ArtistName,
				e.AlbumID, nullInt64(e.CopyrightID), e.Popularity, e.Fee, e.TrackNumber)
			if err != nil {
				return classifyWriteError("catalog_songs", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}

		if len(raw) > 0 {
			rawStmt, err := tx.PrepareContext(ctx, `
				INSERT INTO song_json (artist_id, song_id, api_text) VALUES (?, ?, ?)
				ON CONFLICT(artist_id, song_id) DO NOTHING
			`)
			if err != nil {
				return fmt.Errorf("prepare song_json insert: %w", err)
			}
			defer rawStmt.Close()

			for songID, text := range raw {
				if _, err := rawStmt.ExecContext(ctx, artistID, songID, text); err != nil {
					return classifyWriteError("song_json", err)
				}
			}
		}

		return markArtistFinished(ctx, tx, artistID)
	})
	return inserted, err
}

// GetCatalogEntry retrieves a stored song by id
func (s *Store) GetCatalogEntry(ctx context.Context, songID int64) (*CatalogEntry, error) {
	var e CatalogEntry
	var cp sql.NullInt64
	var artistName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT song_id, song_name, artist_id, artist_name, album_id, copyright_id, popularity, fee, track_number
		FROM catalog_songs WHERE song_id = ?
	`, songID).Scan(&e.SongID, &e.SongName, &e.ArtistID, &artistName, &e.AlbumID, &cp, &e.Popularity, &e.Fee, &e.TrackNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("song %d: %w", songID, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	e.ArtistName = artistName.String
	if cp.Valid {
		v := cp.Int64
		e.CopyrightID = &v
	}
	return &e, nil
}

// ArtistCatalog returns the stored songs that were enumerated from the
// artist's catalog, including songs first stored under a co-credited artist.
func (s *Store) ArtistCatalog(ctx context.Context, artistID int64) ([]CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, song_name, artist_id, artist_name, album_id, copyright_id, popularity, fee, track_number
		FROM catalog_songs
		WHERE artist_id = ?
		   OR song_id IN (SELECT song_id FROM song_json WHERE artist_id = ?)
		ORDER BY song_id
	`, artistID, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		var cp sql.NullInt64
		var artistName sql.NullString
		if err := rows.Scan(&e.SongID, &e.SongName, &e.ArtistID, &artistName, &e.AlbumID, &cp, &e.Popularity, &e.Fee, &e.TrackNumber); err != nil {
			return nil, err
		}
		e.ArtistName = artistName.String
		if cp.Valid {
			v := cp.Int64
			e.CopyrightID = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PendingLyricSongs returns up to limit song ids whose lyrics are not stored
func (s *Store) PendingLyricSongs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id FROM catalog_songs
		WHERE lyrics_finished = 0
		ORDER BY song_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending lyric songs: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// CatalogSongNames returns the distinct stored song titles
func (s *Store) CatalogSongNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT song_name FROM catalog_songs ORDER BY song_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query song names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CatalogSongIDs returns every stored song id
func (s *Store) CatalogSongIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT song_id FROM catalog_songs")
	if err != nil {
		return nil, fmt.Errorf("failed to query song ids: %w", err)
	}
	defer rows.Close()

	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CatalogCounts returns total songs and songs with lyrics finished
func (s *Store) CatalogCounts(ctx context.Context) (total, lyricsFinished int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(lyrics_finished), 0) FROM catalog_songs
	`).Scan(&total, &lyricsFinished)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return total, lyricsFinished, nil
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
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

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
