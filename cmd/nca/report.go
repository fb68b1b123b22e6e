package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a summary report from the database and event logs",
	Long: `Generate a summary report in Markdown format.

The report includes:
- Artist and crawl queue statistics
- Lyric progress and instrumental tracks
- Infringement sweep hits
- Top errors from an event log

The report is saved to artifacts/reports/<timestamp>/summary.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().String("event-log", "", "Path to event log file (optional)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dbPath := viper.GetString("db")

	util.InfoLog("=== Generating Summary Report ===")

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	// Get event log path if specified
	eventLogPath, _ := cmd.Flags().GetString("event-log")

	util.InfoLog("Analyzing data...")
	summaryReport, err := report.GenerateSummaryReport(ctx, db, eventLogPath)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	summaryReport.DatabasePath = dbPath

	// Determine output path
	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, "summary.md")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summaryReport, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("")
	util.InfoLog("Summary:")
	util.InfoLog("  Artists: %d (%d finished, %d pending)",
		summaryReport.ArtistsResolved, summaryReport.ArtistsFinished, summaryReport.ArtistsPending)
	util.InfoLog("  Catalog songs: %s", humanize.Comma(int64(summaryReport.CatalogSongs)))
	util.InfoLog("  Lyrics finished: %s", humanize.Comma(int64(summaryReport.LyricsFinished)))
	if summaryReport.ForeignHits > 0 {
		util.InfoLog("  Sweep hits: %s", humanize.Comma(int64(summaryReport.ForeignHits)))
	}
	if len(summaryReport.TopErrors) > 0 {
		util.WarnLog("  Distinct errors: %d", len(summaryReport.TopErrors))
	}

	return nil
}
