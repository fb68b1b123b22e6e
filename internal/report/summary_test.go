package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/netease-audit/internal/store"
)

func setupTestData(t *testing.T, db *store.Store) {
	t.Helper()
	ctx := context.Background()

	artists := []store.Artist{{ID: 1, Name: "周杰伦"}, {ID: 2, Name: "周杰伦翻唱"}}
	if _, err := db.UpsertArtists(ctx, artists, "周杰伦", "周杰伦"); err != nil {
		t.Fatalf("UpsertArtists: %v", err)
	}
	if err := db.EnqueueArtists(ctx, []int64{1, 2}); err != nil {
		t.Fatalf("EnqueueArtists: %v", err)
	}

	entries := []store.CatalogEntry{
		{SongID: 10, SongName: "晴天", ArtistID: 1},
		{SongID: 11, SongName: "七里香", ArtistID: 1},
	}
	if _, err := db.SaveCatalog(ctx, 1, entries, nil); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}

	records := []store.LyricRecord{{SongID: 10, VariantID: "pure_music_1", Instrumental: true}}
	if err := db.SaveLyricsBatch(ctx, records); err != nil {
		t.Fatalf("SaveLyricsBatch: %v", err)
	}

	hits := []store.SearchHit{
		{SongID: 500, SearchTerm: "晴天", SearchKind: "title", SongName: "晴天", ArtistNames: "Someone"},
		{SongID: 10, SearchTerm: "晴天", SearchKind: "title", SongName: "晴天", Own: true},
	}
	if _, err := db.SaveSearchHits(ctx, hits); err != nil {
		t.Fatalf("SaveSearchHits: %v", err)
	}
}

func TestGenerateSummaryReport(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := store.Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	setupTestData(t, db)

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	logger.LogAlbum(1, errors.New("status 503"))
	logger.LogAlbum(2, errors.New("status 503"))
	logger.LogLyrics(3, "", errors.New("timeout"))
	logger.LogCrawl(1, 2, 2, time.Second, nil)
	logger.Close()

	report, err := GenerateSummaryReport(context.Background(), db, logger.Path())
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	if report.ArtistsResolved != 2 || report.ArtistsFinished != 1 || report.ArtistsPending != 1 {
		t.Errorf("unexpected artist counts: %+v", report)
	}
	if report.CatalogSongs != 2 || report.LyricsFinished != 1 || report.Instrumental != 1 {
		t.Errorf("unexpected catalog counts: %+v", report)
	}
	if report.ForeignHits != 1 || report.OwnHits != 1 || len(report.TopHits) != 1 {
		t.Errorf("unexpected hit counts: %+v", report)
	}
	if len(report.TopErrors) != 2 || report.TopErrors[0].Error != "status 503" || report.TopErrors[0].Count != 2 {
		t.Errorf("unexpected top errors: %+v", report.TopErrors)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}
}

func TestGenerateSummaryReportMissingEventLog(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	report, err := GenerateSummaryReport(context.Background(), db, "does-not-exist.jsonl")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}
	if len(report.TopErrors) != 0 {
		t.Errorf("expected no errors, got %+v", report.TopErrors)
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "reports", "summary.md")

	report := &SummaryReport{
		GeneratedAt:     time.Now(),
		ArtistsResolved: 12,
		ArtistsFinished: 10,
		ArtistsPending:  2,
		CatalogSongs:    12345,
		LyricsFinished:  12000,
		LyricRecords:    12000,
		Instrumental:    40,
		ForeignHits:     3,
		DatabasePath:    "/test/database.db",
		EventLogPath:    "/test/events.jsonl",
		TopErrors:       []ErrorSummary{{Error: "fetch /lyric?id=1: status 503", Count: 4}},
		TopHits: []store.SearchHit{
			{SongID: 1, SearchTerm: "晴天", SearchKind: "title", SongName: "晴天", ArtistNames: "Someone"},
		},
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	md := string(content)

	expected := []string{
		"# NetEase Audit - Summary Report",
		"| Artists Resolved | 12 |",
		"| Artists Pending | 2 |",
		"| Catalog Songs | 12,345 |",
		"| Instrumental | 40 |",
		"## 🔍 Infringement Sweep",
		"| 晴天 | title | 晴天 | Someone |",
		"| 4 | fetch /lyric?id=1: status 503 |",
		"`/test/database.db`",
	}
	for _, s := range expected {
		if !strings.Contains(md, s) {
			t.Errorf("report missing %q", s)
		}
	}
}

func TestWriteMarkdownReportEmpty(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "summary.md")

	if err := WriteMarkdownReport(&SummaryReport{GeneratedAt: time.Now()}, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, _ := os.ReadFile(outputPath)
	md := string(content)
	if strings.Contains(md, "## 🎵 Lyrics") || strings.Contains(md, "Top Errors") {
		t.Error("empty report should omit lyric and error sections")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdefghijklmnopqrstuvwxyz", 12); len([]rune(got)) > 12 || !strings.Contains(got, "...") {
		t.Errorf("unexpected %q", got)
	}
}
