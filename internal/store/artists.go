package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/franz/netease-audit/internal/util"
)

// UpsertArtists inserts artists that are not yet known. Existing rows are
// left untouched. Returns the number of newly inserted artists.
func (s *Store) UpsertArtists(ctx context.Context, artists []Artist, searchTerm, reference string) (int, error) {
	if len(artists) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO artists (artist_id, name, aliases, album_count, video_count, followers, search_term, profile_reference)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(artist_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare artist insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range artists {
			aliases, err := json.Marshal(nonNil(a.Aliases))
			if err != nil {
				return fmt.Errorf("encode aliases for artist %d: %w", a.ID, err)
			}
			res, err := stmt.ExecContext(ctx, a.ID, a.Name, string(aliases), a.AlbumCount, a.VideoCount, a.Followers, searchTerm, reference)
			if err != nil {
				return classifyWriteError("artists", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

// GetArtist retrieves an artist by id
func (s *Store) GetArtist(ctx context.Context, id int64) (*Artist, error) {
	var a Artist
	var aliases sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT artist_id, name, aliases, album_count, video_count, followers
		FROM artists WHERE artist_id = ?
	`, id).Scan(&a.ID, &a.Name, &aliases, &a.AlbumCount, &a.VideoCount, &a.Followers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artist %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	if aliases.Valid && aliases.String != "" {
		if err := json.Unmarshal([]byte(aliases.String), &a.Aliases); err != nil {
			return nil, fmt.Errorf("decode aliases for artist %d: %w", id, err)
		}
	}
	return &a, nil
}

// SetFollowers records the follower count of an artist
func (s *Store) SetFollowers(ctx context.Context, id, followers int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE artists SET followers = ? WHERE artist_id = ?", followers, id)
	if err != nil {
		return fmt.Errorf("failed to set followers: %w", err)
	}
	return nil
}

// CountArtists returns the number of stored artist profiles
func (s *Store) CountArtists(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artists").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
