package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/franz/netease-audit/internal/store"
)

// SummaryReport represents a complete summary report
type SummaryReport struct {
	GeneratedAt time.Time

	// Crawl statistics
	ArtistsResolved int
	ArtistsFinished int
	ArtistsPending  int
	CatalogSongs    int

	// Lyric statistics
	LyricsFinished int
	LyricRecords   int
	Instrumental   int

	// Sweep statistics
	ForeignHits int
	OwnHits     int

	// Details
	TopErrors []ErrorSummary
	TopHits   []store.SearchHit

	// Metadata
	DatabasePath string
	EventLogPath string
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// GenerateSummaryReport creates a summary report from the database and an
// optional event log
func GenerateSummaryReport(ctx context.Context, db *store.Store, eventLogPath string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		EventLogPath: eventLogPath,
		TopErrors:    make([]ErrorSummary, 0),
	}

	var err error
	if report.ArtistsResolved, err = db.CountArtists(ctx); err != nil {
		return nil, err
	}
	if report.ArtistsFinished, report.ArtistsPending, err = db.QueueCounts(ctx); err != nil {
		return nil, err
	}
	if report.CatalogSongs, report.LyricsFinished, err = db.CatalogCounts(ctx); err != nil {
		return nil, err
	}
	if report.LyricRecords, report.Instrumental, err = db.LyricCounts(ctx); err != nil {
		return nil, err
	}
	if report.ForeignHits, report.OwnHits, err = db.CountSearchHits(ctx); err != nil {
		return nil, err
	}

	hits, err := db.ListSearchHits(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(hits) > 20 {
		hits = hits[:20]
	}
	report.TopHits = hits

	if eventLogPath != "" {
		report.TopErrors = gatherTopErrors(eventLogPath, 10)
	}

	return report, nil
}

// gatherTopErrors retrieves the most common errors from an event log.
// An unreadable log yields no errors.
func gatherTopErrors(eventLogPath string, limit int) []ErrorSummary {
	file, err := os.Open(eventLogPath)
	if err != nil {
		return []ErrorSummary{}
	}
	defer file.Close()

	errorCounts := make(map[string]int)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if event.Error != "" {
			errorCounts[event.Error]++
		}
	}

	errors := make([]ErrorSummary, 0, len(errorCounts))
	for msg, count := range errorCounts {
		errors = append(errors, ErrorSummary{Error: msg, Count: count})
	}

	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})

	if len(errors) > limit {
		errors = errors[:limit]
	}

	return errors
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# NetEase Audit - Summary Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Crawl
	md.WriteString("## 📊 Crawl\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Artists Resolved | %s |\n", humanize.Comma(int64(report.ArtistsResolved))))
	md.WriteString(fmt.Sprintf("| Artists Crawled | %s |\n", humanize.Comma(int64(report.ArtistsFinished))))
	if report.ArtistsPending > 0 {
		md.WriteString(fmt.Sprintf("| Artists Pending | %s |\n", humanize.Comma(int64(report.ArtistsPending))))
	}
	md.WriteString(fmt.Sprintf("| Catalog Songs | %s |\n", humanize.Comma(int64(report.CatalogSongs))))
	md.WriteString("\n")

	// Lyrics
	if report.CatalogSongs > 0 {
		md.WriteString("## 🎵 Lyrics\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Songs Finished | %s (%.1f%%) |\n",
			humanize.Comma(int64(report.LyricsFinished)),
			float64(report.LyricsFinished)/float64(report.CatalogSongs)*100))
		md.WriteString(fmt.Sprintf("| Lyric Records | %s |\n", humanize.Comma(int64(report.LyricRecords))))
		md.WriteString(fmt.Sprintf("| Instrumental | %s |\n", humanize.Comma(int64(report.Instrumental))))
		md.WriteString("\n")
	}

	// Sweep
	if report.ForeignHits > 0 || report.OwnHits > 0 {
		md.WriteString("## 🔍 Infringement Sweep\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Similar Songs | %s |\n", humanize.Comma(int64(report.ForeignHits))))
		md.WriteString(fmt.Sprintf("| Own Songs Matched | %s |\n", humanize.Comma(int64(report.OwnHits))))
		md.WriteString("\n")

		if len(report.TopHits) > 0 {
			md.WriteString("| Search | Kind | Song | Artists |\n")
			md.WriteString("|--------|------|------|---------|\n")
			for _, h := range report.TopHits {
				md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
					truncate(h.SearchTerm, 40), h.SearchKind, truncate(h.SongName, 40), truncate(h.ArtistNames, 40)))
			}
			md.WriteString("\n")
		}
	}

	// Errors
	if len(report.TopErrors) > 0 {
		md.WriteString("## ⚠️ Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range report.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, truncate(err.Error, 120)))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by [nca](https://github.com/franz/netease-audit) - NetEase catalog audit*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// truncate shortens s to at most maxLen runes, cutting from the middle
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	start := maxLen/2 - 2
	end := len(r) - (maxLen/2 - 2)
	return string(r[:start]) + "..." + string(r[end:])
}
