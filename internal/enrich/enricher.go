// Package enrich augments catalog entries with album metadata, engagement
// counts and classified lyrics. Lookups run on a bounded worker pool and
// results are merged back by id.
package enrich

import (
	"context"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/store"
)

// AlbumSource looks up albums, normally through netease.Cache
type AlbumSource interface {
	GetAlbum(ctx context.Context, albumID int64) (*netease.Album, error)
}

// SongSource provides song details and comment counts
type SongSource interface {
	SongDetails(ctx context.Context, ids []int64) ([]netease.Song, error)
	CommentCount(ctx context.Context, songID int64) (int64, error)
}

// LyricSource provides lyric payloads
type LyricSource interface {
	GetLyrics(ctx context.Context, songID int64) (*netease.Lyrics, error)
}

// LyricStore persists lyric batches and reports pending work
type LyricStore interface {
	PendingLyricSongs(ctx context.Context, limit int) ([]int64, error)
	SaveLyricsBatch(ctx context.Context, records []store.LyricRecord) error
	MaxInstrumentalSeq(ctx context.Context) (int64, error)
}

// Config holds enricher configuration
type Config struct {
	Albums          AlbumSource
	Songs           SongSource
	Lyrics          LyricSource
	Store           LyricStore
	Concurrency     int
	DetailBatchSize int
	LyricBatchSize  int
	Logger          *report.EventLogger
}

// Enricher runs the enrichment lookups
type Enricher struct {
	albums          AlbumSource
	songs           SongSource
	lyrics          LyricSource
	store           LyricStore
	concurrency     int
	detailBatchSize int
	lyricBatchSize  int
	logger          *report.EventLogger
}

// New creates a new enricher
func New(cfg *Config) *Enricher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.DetailBatchSize <= 0 {
		cfg.DetailBatchSize = 500
	}
	if cfg.LyricBatchSize <= 0 {
		cfg.LyricBatchSize = 50
	}

	return &Enricher{
		albums:          cfg.Albums,
		songs:           cfg.Songs,
		lyrics:          cfg.Lyrics,
		store:           cfg.Store,
		concurrency:     cfg.Concurrency,
		detailBatchSize: cfg.DetailBatchSize,
		lyricBatchSize:  cfg.LyricBatchSize,
		logger:          cfg.Logger,
	}
}
