package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var auditCmd = &cobra.Command{
	Use:   "audit <profile-url|name>",
	Short: "Run the full audit of an artist and export the spreadsheet",
	Long: `Run every stage for one artist and write the audit workbook.

Stages:
1. Resolve: canonical artist and similar profiles are stored and queued
2. Crawl: unfinished catalogs are enumerated and committed per artist
3. Enrich: albums, comment counts and lyrics are fetched concurrently
4. Classify: labels are translated, rows colored and royalties estimated
5. Export: the workbook gets the song sheet, the duplicate profile sheet
   and, after 'nca sweep', the similar titles sheet

Every stage checkpoints to the database, so an interrupted audit can be
rerun and only does the remaining work.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().String("out", "", "Output workbook (default: artifacts/audit-<timestamp>.xlsx)")
	auditCmd.Flags().Bool("corrected-bands", false, "Use royalty band text without the historical typos")

	viper.BindPFlag("out", auditCmd.Flags().Lookup("out"))
	viper.BindPFlag("royalty.corrected_bands", auditCmd.Flags().Lookup("corrected-bands"))
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	outputPath := GetConfigString("out", "")
	if outputPath == "" {
		outputPath = filepath.Join("artifacts", fmt.Sprintf("audit-%s.xlsx", time.Now().Format("20060102-150405")))
	}

	ref, err := loadReference()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	pipeline, err := newPipeline(db, logger, ref)
	if err != nil {
		return err
	}

	util.InfoLog("=== Audit ===")
	result, err := pipeline.Run(ctx, args[0], outputPath)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	util.InfoLog("")
	util.InfoLog("Audit of %s finished in %v", result.Resolved.Canonical.Name, result.Duration.Round(time.Millisecond))
	util.InfoLog("  Songs: %d", result.Rows)
	util.InfoLog("  Red: %d", result.Colors[classify.ColorRed])
	util.InfoLog("  Yellow: %d", result.Colors[classify.ColorYellow])
	util.InfoLog("  Major label: %d", result.Colors[classify.ColorGreenMajor])
	util.InfoLog("  Duplicate profiles: %d", result.Duplicates)
	if result.AlbumCacheHits+result.AlbumCacheMisses > 0 {
		util.InfoLog("  Album cache: %d hits, %d fetched", result.AlbumCacheHits, result.AlbumCacheMisses)
	}
	if result.Similar > 0 {
		util.InfoLog("  Similar titles: %d", result.Similar)
	}
	if result.Crawl != nil && result.Crawl.Failed > 0 {
		util.WarnLog("  %d artists failed to crawl; rerun the audit to retry them", result.Crawl.Failed)
	}
	if result.Lyrics != nil && len(result.Lyrics.Errors) > 0 {
		util.WarnLog("  %d songs without lyrics; rerun the audit to retry them", len(result.Lyrics.Errors))
	}
	util.InfoLog("Workbook: %s", result.OutputPath)

	return nil
}
