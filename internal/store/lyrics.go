package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/netease-audit/internal/util"
)

// InstrumentalPrefix prefixes synthetic variant ids of instrumental songs
const InstrumentalPrefix = "pure_music_"

// SaveLyricsBatch inserts lyric records and marks their songs finished in one
// transaction, so a crash never leaves a song marked without its lyrics.
func (s *Store) SaveLyricsBatch(ctx context.Context, records []LyricRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.Transaction(ctx, func(tx *sql.Tx) error {
		insStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lyrics (song_id, variant_id, instrumental, songwriters, lyrics, translated_lyrics)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(song_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare lyrics insert: %w", err)
		}
		defer insStmt.Close()

		markStmt, err := tx.PrepareContext(ctx, "UPDATE catalog_songs SET lyrics_finished = 1 WHERE song_id = ?")
		if err != nil {
			return fmt.Errorf("prepare lyrics mark: %w", err)
		}
		defer markStmt.Close()

		for _, r := range records {
			writers, err := json.Marshal(nonNil(r.Songwriters))
			if err != nil {
				return fmt.Errorf("encode songwriters for song %d: %w", r.SongID, err)
			}
			var translated sql.NullString
			if r.TranslatedLyrics != nil {
				translated = sql.NullString{String: *r.TranslatedLyrics, Valid: true}
			}
			if _, err := insStmt.ExecContext(ctx, r.SongID, r.VariantID, r.Instrumental, string(writers), r.Lyrics, translated); err != nil {
				return classifyWriteError("lyrics", err)
			}
			if _, err := markStmt.ExecContext(ctx, r.SongID); err != nil {
				return fmt.Errorf("failed to mark lyrics finished for song %d: %w", r.SongID, err)
			}
		}
		return nil
	})
}

// GetLyrics retrieves the lyric record of a song
func (s *Store) GetLyrics(ctx context.Context, songID int64) (*LyricRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT song_id, variant_id, instrumental, songwriters, lyrics, translated_lyrics
		FROM lyrics WHERE song_id = ?
	`, songID)
	r, err := scanLyric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lyrics for song %d: %w", songID, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lyrics: %w", err)
	}
	return r, nil
}

// AllLyrics returns every non-instrumental lyric record, ordered by song id
func (s *Store) AllLyrics(ctx context.Context) ([]LyricRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, variant_id, instrumental, songwriters, lyrics, translated_lyrics
		FROM lyrics WHERE instrumental = 0
		ORDER BY song_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lyrics: %w", err)
	}
	defer rows.Close()

	var records []LyricRecord
	for rows.Next() {
		r, err := scanLyric(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// LyricsBySong returns every stored lyric record keyed by song id
func (s *Store) LyricsBySong(ctx context.Context) (map[int64]LyricRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, variant_id, instrumental, songwriters, lyrics, translated_lyrics
		FROM lyrics
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lyrics: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]LyricRecord)
	for rows.Next() {
		r, err := scanLyric(rows)
		if err != nil {
			return nil, err
		}
		records[r.SongID] = *r
	}
	return records, rows.Err()
}

// MaxInstrumentalSeq returns the highest pure_music sequence number stored,
// or 0 when no instrumental has been recorded.
func (s *Store) MaxInstrumentalSeq(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT variant_id FROM lyrics WHERE instrumental = 1")
	if err != nil {
		return 0, fmt.Errorf("failed to query instrumentals: %w", err)
	}
	defer rows.Close()

	var maxSeq int64
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(id, InstrumentalPrefix), 10, 64)
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq, rows.Err()
}

// LyricCounts returns stored lyric records and how many are instrumental
func (s *Store) LyricCounts(ctx context.Context) (total, instrumental int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(instrumental), 0) FROM lyrics
	`).Scan(&total, &instrumental)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count lyrics: %w", err)
	}
	return total, instrumental, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLyric(row rowScanner) (*LyricRecord, error) {
	var r LyricRecord
	var writers, lyrics, translated sql.NullString
	if err := row.Scan(&r.SongID, &r.VariantID, &r.Instrumental, &writers, &lyrics, &translated); err != nil {
		return nil, err
	}
	r.Lyrics = lyrics.String
	if translated.Valid {
		t := translated.String
		r.TranslatedLyrics = &t
	}
	if writers.Valid && writers.String != "" {
		if err := json.Unmarshal([]byte(writers.String), &r.Songwriters); err != nil {
			return nil, fmt.Errorf("decode songwriters for song %d: %w", r.SongID, err)
		}
	}
	return &r, nil
}
