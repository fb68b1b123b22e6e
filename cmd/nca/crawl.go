package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Enumerate the catalog of every queued artist",
	Long: `Page through the NetEase catalog of every unfinished queued artist.

Each artist's songs, raw payloads and finished flag are committed together,
so an interrupted crawl resumes with the first unfinished artist. An artist
whose pages fail to load is skipped and stays queued.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().Int64Slice("artist", nil, "Only crawl these queued artist ids")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	only, _ := cmd.Flags().GetInt64Slice("artist")

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	pipeline, err := newPipeline(db, logger, nil)
	if err != nil {
		return err
	}

	util.InfoLog("=== Catalog Crawl ===")
	startTime := time.Now()

	result, err := pipeline.Crawl(ctx, only)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	util.SuccessLog("Crawl complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Artists finished: %d/%d", result.Finished, result.Artists)
	util.InfoLog("  Catalog entries: %s", humanize.Comma(int64(result.Entries)))
	util.InfoLog("  New songs: %s", humanize.Comma(int64(result.Inserted)))
	if result.Failed > 0 {
		util.WarnLog("  Failed artists: %d (still queued, run crawl again)", result.Failed)
	}

	return nil
}
