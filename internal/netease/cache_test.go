package netease

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"
)

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) GetAlbum(ctx context.Context, albumID int64) (*Album, error) {
	f.calls.Add(1)
	publish := int64(-86400000)
	return &Album{ID: albumID, Name: "Album", Company: "Label", PublishTime: &publish}, nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCacheFetchesOnce(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := NewCache(openTestDB(t), fetcher)
	if err := cache.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		album, err := cache.GetAlbum(ctx, 42)
		if err != nil {
			t.Fatalf("GetAlbum: %v", err)
		}
		if album.Company != "Label" || album.PublishTime == nil || *album.PublishTime != -86400000 {
			t.Errorf("unexpected album: %+v", album)
		}
	}

	if fetcher.calls.Load() != 1 {
		t.Errorf("expected 1 remote fetch, got %d", fetcher.calls.Load())
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}

	entries, totalHits, err := cache.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if entries != 1 || totalHits != 2 {
		t.Errorf("expected 1 entry with 2 hits, got %d/%d", entries, totalHits)
	}
}

func TestCacheRejectsZeroAlbum(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := NewCache(openTestDB(t), fetcher)
	if err := cache.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	if _, err := cache.GetAlbum(context.Background(), 0); err == nil {
		t.Error("expected error for album id 0")
	}
	if fetcher.calls.Load() != 0 {
		t.Error("album 0 must never be fetched")
	}
}
