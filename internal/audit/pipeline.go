// Package audit runs the full audit of one artist: resolution, catalog
// crawl, enrichment, classification and the xlsx export, checkpointing to
// the store after every stage so an interrupted run can be resumed.
package audit

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/franz/netease-audit/internal/catalog"
	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/enrich"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/resolve"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// Source is everything the pipeline needs from the remote catalog
type Source interface {
	resolve.Source
	catalog.Source
	enrich.SongSource
	enrich.LyricSource
	FollowerCount(ctx context.Context, artistID int64) (int64, error)
}

// Config holds pipeline configuration
type Config struct {
	Source Source
	// Albums defaults to Source when it can fetch albums
	Albums          enrich.AlbumSource
	Store           *store.Store
	Reference       *classify.Reference
	CorrectedBands  bool
	Concurrency     int
	DetailBatchSize int
	LyricBatchSize  int
	Logger          *report.EventLogger
}

// Result summarizes one audit run
type Result struct {
	RunID      string
	Resolved   *resolve.Result
	Crawl      *CrawlResult
	Lyrics     *enrich.LyricsResult
	Rows       int
	Colors     map[classify.RiskColor]int
	Duplicates int
	Similar    int
	OutputPath string
	Duration   time.Duration

	// Album cache lookups of this run, when the album source is cached
	AlbumCacheHits   int64
	AlbumCacheMisses int64
}

// cacheStats is implemented by cached album sources
type cacheStats interface {
	Stats() (hits, misses int64)
}

// Pipeline wires the audit stages together
type Pipeline struct {
	src        Source
	albums     enrich.AlbumSource
	store      *store.Store
	resolver   *resolve.Resolver
	crawler    *Crawler
	enricher   *enrich.Enricher
	classifier *classify.Classifier
	logger     *report.EventLogger
}

// New creates a pipeline. Reference may be nil when only the resolve,
// crawl and lyric stages are used.
func New(cfg *Config) (*Pipeline, error) {
	if cfg.Source == nil || cfg.Store == nil {
		return nil, fmt.Errorf("audit pipeline needs a source and a store: %w", util.ErrInvalidConfig)
	}
	albums := cfg.Albums
	if albums == nil {
		a, ok := cfg.Source.(enrich.AlbumSource)
		if !ok {
			return nil, fmt.Errorf("no album source configured: %w", util.ErrInvalidConfig)
		}
		albums = a
	}

	p := &Pipeline{
		src:      cfg.Source,
		albums:   albums,
		store:    cfg.Store,
		resolver: resolve.New(cfg.Source),
		crawler:  NewCrawler(cfg.Source, cfg.Store, cfg.Logger),
		enricher: enrich.New(&enrich.Config{
			Albums:          albums,
			Songs:           cfg.Source,
			Lyrics:          cfg.Source,
			Store:           cfg.Store,
			Concurrency:     cfg.Concurrency,
			DetailBatchSize: cfg.DetailBatchSize,
			LyricBatchSize:  cfg.LyricBatchSize,
			Logger:          cfg.Logger,
		}),
		logger: cfg.Logger,
	}
	if cfg.Reference != nil {
		p.classifier = classify.New(cfg.Reference, cfg.CorrectedBands)
	}
	return p, nil
}

// Resolve resolves a reference and records the artists and their queue
// entries
func (p *Pipeline) Resolve(ctx context.Context, reference string) (*resolve.Result, error) {
	res, err := p.resolver.Resolve(ctx, reference)
	if err != nil {
		p.logger.LogError(report.EventResolve, err)
		return nil, err
	}

	if _, err := p.store.UpsertArtists(ctx, res.Candidates, res.SearchTerm, res.Reference); err != nil {
		return nil, err
	}
	if err := p.store.EnqueueArtists(ctx, res.ArtistIDs()); err != nil {
		return nil, err
	}

	p.logger.LogResolve(reference, res.Canonical.ID, len(res.Duplicates))
	return res, nil
}

// Crawl enumerates the given artists, or every unfinished queued artist
// when ids is empty
func (p *Pipeline) Crawl(ctx context.Context, ids []int64) (*CrawlResult, error) {
	pending, err := p.store.PendingArtists(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		pending = slices.DeleteFunc(pending, func(id int64) bool {
			return !slices.Contains(ids, id)
		})
	}
	return p.crawler.Crawl(ctx, pending)
}

// Lyrics fetches lyrics for every song not yet finished
func (p *Pipeline) Lyrics(ctx context.Context) (*enrich.LyricsResult, error) {
	return p.enricher.Lyrics(ctx)
}

// Run performs a full audit of reference and writes the workbook to
// outputPath
func (p *Pipeline) Run(ctx context.Context, reference, outputPath string) (*Result, error) {
	if p.classifier == nil {
		return nil, fmt.Errorf("audit needs reference tables: %w", util.ErrInvalidConfig)
	}

	start := time.Now()
	runID := p.logger.RunID()
	if runID == "" {
		runID = uuid.NewString()
	}
	result := &Result{RunID: runID, OutputPath: outputPath}

	util.InfoLog("Audit run %s", runID)

	// Stage 1: resolve
	res, err := p.Resolve(ctx, reference)
	if err != nil {
		return result, fmt.Errorf("resolve: %w", err)
	}
	result.Resolved = res
	artistIDs := res.ArtistIDs()

	// Stage 2: crawl whatever part of the artist set is still unfinished
	result.Crawl, err = p.Crawl(ctx, artistIDs)
	if err != nil {
		return result, fmt.Errorf("crawl: %w", err)
	}

	entries, err := p.store.ArtistCatalog(ctx, res.Canonical.ID)
	if err != nil {
		return result, err
	}
	util.InfoLog("%d catalog entries for %s", len(entries), res.Canonical.Name)

	// Stage 3: album, engagement and lyric enrichment run side by side
	var albums map[int64]store.AlbumDetail
	var engagement map[int64]enrich.Engagement
	songIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		songIDs = append(songIDs, e.SongID)
	}

	stats, cached := p.albums.(cacheStats)
	var hitsBefore, missesBefore int64
	if cached {
		hitsBefore, missesBefore = stats.Stats()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		albums, err = p.enricher.Albums(gCtx, entries)
		return err
	})
	g.Go(func() error {
		var err error
		engagement, err = p.enricher.Engagement(gCtx, songIDs)
		return err
	})
	g.Go(func() error {
		var err error
		result.Lyrics, err = p.enricher.Lyrics(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("enrichment: %w", err)
	}
	if cached {
		hits, misses := stats.Stats()
		result.AlbumCacheHits = hits - hitsBefore
		result.AlbumCacheMisses = misses - missesBefore
	}

	followers := p.followers(ctx, artistIDs)

	lyrics, err := p.store.LyricsBySong(ctx)
	if err != nil {
		return result, err
	}

	// Stage 4: classification
	rows := BuildRows(entries, albums, engagement, lyrics)
	p.classifier.Classify(rows)
	result.Rows = len(rows)
	result.Colors = ColorCounts(rows)

	// Stage 5: export
	similar, err := p.store.ListSearchHits(ctx, false)
	if err != nil {
		return result, err
	}
	duplicates := res.DuplicateCandidates(followers)
	result.Duplicates = len(duplicates)
	result.Similar = len(similar)

	wb := &report.Workbook{Rows: rows, Duplicates: duplicates, Similar: similar}
	if err := report.WriteAuditWorkbook(wb, outputPath); err != nil {
		p.logger.LogError(report.EventExport, err)
		return result, fmt.Errorf("export: %w", err)
	}
	p.logger.LogExport(outputPath, len(rows))

	result.Duration = time.Since(start)
	util.SuccessLog("Audit written to %s (%d rows, %d duplicates)", outputPath, len(rows), len(duplicates))
	return result, nil
}

// followers fetches and stores follower counts. A failed lookup counts as
// zero followers.
func (p *Pipeline) followers(ctx context.Context, ids []int64) map[int64]int64 {
	var mu sync.Mutex
	counts := make(map[int64]int64, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		g.Go(func() error {
			n, err := p.src.FollowerCount(gCtx, id)
			if err != nil {
				p.logger.Log(&report.Event{
					Level:    report.LevelWarning,
					Event:    report.EventFollowers,
					ArtistID: id,
					Error:    err.Error(),
				})
				util.WarnLog("Follower count for artist %d: %v", id, err)
				n = 0
			}
			if err := p.store.SetFollowers(gCtx, id, n); err != nil {
				util.WarnLog("Failed to store followers of artist %d: %v", id, err)
			}

			mu.Lock()
			counts[id] = n
			mu.Unlock()
			return nil
		})
	}
	// workers never fail; lookup errors are recorded as zero followers
	_ = g.Wait()

	return counts
}
