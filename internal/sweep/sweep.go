// Package sweep searches the catalog for songs that reuse the audited
// artist's titles, lyric lines or songwriter credits.
package sweep

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/normalize"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// Search kinds recorded on hits
const (
	KindTitle      = "title"
	KindLyric      = "lyric"
	KindSongwriter = "songwriter"
)

// Source runs song and lyric searches
type Source interface {
	SearchSongs(ctx context.Context, keywords string, searchType, limit int) ([]netease.SearchSong, error)
}

// Store provides sweep inputs and persists hits
type Store interface {
	CatalogSongNames(ctx context.Context) ([]string, error)
	CatalogSongIDs(ctx context.Context) (map[int64]bool, error)
	AllLyrics(ctx context.Context) ([]store.LyricRecord, error)
	SaveSearchHits(ctx context.Context, hits []store.SearchHit) (int, error)
}

// Config holds sweeper configuration
type Config struct {
	Source      Source
	Store       Store
	Concurrency int
	// PerSearch caps results per search request
	PerSearch int
	Logger    *report.EventLogger
}

// Options selects which sweeps run
type Options struct {
	Titles bool
	Lyrics bool
}

// Result summarizes a sweep
type Result struct {
	Searches int
	Failed   int
	NewHits  int
}

// Sweeper runs infringement searches
type Sweeper struct {
	src         Source
	store       Store
	concurrency int
	perSearch   int
	logger      *report.EventLogger
}

// New creates a sweeper
func New(cfg *Config) *Sweeper {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PerSearch <= 0 {
		cfg.PerSearch = 30
	}
	return &Sweeper{
		src:         cfg.Source,
		store:       cfg.Store,
		concurrency: cfg.Concurrency,
		perSearch:   cfg.PerSearch,
		logger:      cfg.Logger,
	}
}

type search struct {
	term       string
	kind       string
	searchType int
}

// Run searches every stored title and/or lyric line and records the hits.
// A failed search is logged and skipped.
func (s *Sweeper) Run(ctx context.Context, opts Options) (*Result, error) {
	own, err := s.store.CatalogSongIDs(ctx)
	if err != nil {
		return nil, err
	}

	searches, err := s.plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(searches) == 0 {
		util.InfoLog("Nothing to sweep")
		return &Result{}, nil
	}

	util.InfoLog("Running %d sweep searches", len(searches))

	var newHits, failed atomic.Int64
	var progressMu sync.Mutex
	progress := util.NewProgress("sweep", len(searches))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, q := range searches {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer func() {
				progressMu.Lock()
				progress.Add(1)
				progressMu.Unlock()
			}()

			songs, err := s.src.SearchSongs(gCtx, q.term, q.searchType, s.perSearch)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				failed.Add(1)
				s.logger.LogSweep(q.kind, q.term, 0, err)
				util.WarnLog("Sweep %s '%s': %v", q.kind, q.term, err)
				return nil
			}

			hits := make([]store.SearchHit, 0, len(songs))
			for _, song := range songs {
				hits = append(hits, toHit(song, q, own[song.ID]))
			}
			n, err := s.store.SaveSearchHits(gCtx, hits)
			if err != nil {
				// persistence failures abort the sweep
				return err
			}
			newHits.Add(int64(n))
			s.logger.LogSweep(q.kind, q.term, len(hits), nil)
			return nil
		})
	}

	err = g.Wait()
	progress.Finish()

	result := &Result{
		Searches: len(searches),
		Failed:   int(failed.Load()),
		NewHits:  int(newHits.Load()),
	}
	if err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	util.SuccessLog("Sweep complete: %d searches, %d new hits, %d failed", result.Searches, result.NewHits, result.Failed)
	return result, nil
}

// plan builds the distinct searches to run. Titles differing only in
// version markers, case or punctuation are searched once.
func (s *Sweeper) plan(ctx context.Context, opts Options) ([]search, error) {
	var searches []search
	seen := make(map[string]bool)
	add := func(term, kind string, searchType int) {
		norm := normalize.Title(term)
		key := kind + "\x00" + norm
		if term == "" || norm == "" || seen[key] {
			return
		}
		seen[key] = true
		searches = append(searches, search{term: term, kind: kind, searchType: searchType})
	}

	if opts.Titles {
		names, err := s.store.CatalogSongNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			add(normalize.SearchTitle(name), KindTitle, netease.SearchTypeSong)
		}
	}

	if opts.Lyrics {
		records, err := s.store.AllLyrics(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			for _, line := range CleanLyricLines(rec.Lyrics) {
				add(line, KindLyric, netease.SearchTypeLyric)
			}
		}
		for _, rec := range records {
			if len(rec.Songwriters) > 0 {
				add(strings.Join(rec.Songwriters, " "), KindSongwriter, netease.SearchTypeSong)
			}
		}
	}

	return searches, nil
}

// Timestamps anywhere, and whole lines naming a lyricist or composer
var lyricNoise = regexp.MustCompile(`\[.*?\]|\n.*(作词|作曲).*`)

// CleanLyricLines strips timestamps and credit lines from raw lyrics and
// returns the distinct remaining lines in order. The first line, usually
// the title or a credit, is dropped.
func CleanLyricLines(raw string) []string {
	text := lyricNoise.ReplaceAllString(raw, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) <= 1 {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, line := range lines[1:] {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

func toHit(song netease.SearchSong, q search, own bool) store.SearchHit {
	names := make([]string, 0, len(song.Artists))
	ids := make([]string, 0, len(song.Artists))
	for _, a := range song.Artists {
		names = append(names, a.Name)
		ids = append(ids, strconv.FormatInt(a.ID, 10))
	}
	return store.SearchHit{
		SongID:      song.ID,
		SearchTerm:  q.term,
		SearchKind:  q.kind,
		SongName:    song.Name,
		ArtistNames: strings.Join(names, ","),
		ArtistIDs:   strings.Join(ids, ","),
		AlbumID:     song.Album.ID,
		AlbumName:   song.Album.Name,
		PublishTime: song.Album.PublishTime,
		CopyrightID: song.CopyrightID,
		Fee:         song.Fee,
		Own:         own,
	}
}
