package netease

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/franz/netease-audit/internal/util"
)

// AlbumFetcher looks up album details remotely
type AlbumFetcher interface {
	GetAlbum(ctx context.Context, albumID int64) (*Album, error)
}

// Cache provides database-backed caching for album lookups, so repeated
// audits of the same artist never re-fetch an album.
type Cache struct {
	db      *sql.DB
	fetcher AlbumFetcher

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache instance
func NewCache(db *sql.DB, fetcher AlbumFetcher) *Cache {
	return &Cache{
		db:      db,
		fetcher: fetcher,
	}
}

// EnsureSchema creates the cache table if it doesn't exist
func (c *Cache) EnsureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS album_cache (
		album_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		company TEXT,
		publish_time INTEGER, -- milliseconds, NULL when unknown
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		hit_count INTEGER DEFAULT 0
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create album_cache table: %w", err)
	}

	return nil
}

// GetAlbum retrieves album details with cache support.
// Checks cache first, falls back to the API if not found.
func (c *Cache) GetAlbum(ctx context.Context, albumID int64) (*Album, error) {
	if albumID == 0 {
		return nil, fmt.Errorf("album id 0: %w", util.ErrNotFound)
	}

	cached, err := c.getFromCache(ctx, albumID)
	if err != nil {
		util.WarnLog("Album cache read failed for %d: %v", albumID, err)
	}
	if cached != nil {
		c.hits.Add(1)
		c.incrementHitCount(ctx, albumID)
		return cached, nil
	}

	c.misses.Add(1)
	util.DebugLog("Album cache miss: %d, querying API", albumID)
	album, err := c.fetcher.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	if err := c.storeInCache(ctx, album); err != nil {
		// Don't fail the lookup if caching fails
		util.WarnLog("Failed to cache album %d: %v", albumID, err)
	}

	return album, nil
}

// Stats returns this process's hit and miss counts
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// GetStats returns persisted cache statistics
func (c *Cache) GetStats(ctx context.Context) (entries int, totalHits int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(hit_count), 0) FROM album_cache`
	err = c.db.QueryRowContext(ctx, query).Scan(&entries, &totalHits)
	return
}

// ClearOldEntries removes cache entries older than the specified duration
func (c *Cache) ClearOldEntries(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := c.db.ExecContext(ctx, "DELETE FROM album_cache WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, err
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (c *Cache) getFromCache(ctx context.Context, albumID int64) (*Album, error) {
	var album Album
	var company sql.NullString
	var publish sql.NullInt64

	err := c.db.QueryRowContext(ctx, `
		SELECT album_id, name, company, publish_time
		FROM album_cache
		WHERE album_id = ?
	`, albumID).Scan(&album.ID, &album.Name, &company, &publish)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	album.Company = company.String
	if publish.Valid {
		v := publish.Int64
		album.PublishTime = &v
	}
	return &album, nil
}

func (c *Cache) storeInCache(ctx context.Context, album *Album) error {
	var publish sql.NullInt64
	if album.PublishTime != nil {
		publish = sql.NullInt64{Int64: *album.PublishTime, Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO album_cache (album_id, name, company, publish_time, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(album_id) DO UPDATE SET
			name = excluded.name,
			company = excluded.company,
			publish_time = excluded.publish_time,
			cached_at = excluded.cached_at
	`, album.ID, album.Name, album.Company, publish, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

func (c *Cache) incrementHitCount(ctx context.Context, albumID int64) {
	_, err := c.db.ExecContext(ctx, `UPDATE album_cache SET hit_count = hit_count + 1 WHERE album_id = ?`, albumID)
	if err != nil {
		util.DebugLog("Failed to increment hit count: %v", err)
	}
}
