package main

import (
	"fmt"
	"time"

	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "Fetch and classify lyrics for every stored song",
	Long: `Fetch lyrics for every stored song that has none yet.

Lyrics are classified as translated (songwriters extracted), instrumental
(given a pure_music sequence id) or plain, and committed in batches of
lyrics.batch_size. Each batch marks its songs finished, so the command can
be interrupted and rerun.`,
	RunE: runLyrics,
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.Flags().Int("batch-size", 0, "Songs per commit (default 50)")
	viper.BindPFlag("lyrics.batch_size", lyricsCmd.Flags().Lookup("batch-size"))
}

func runLyrics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	util.InfoLog("=== Lyrics ===")
	startTime := time.Now()

	result, err := pipeline.Lyrics(ctx)
	if err != nil {
		return fmt.Errorf("lyrics failed: %w", err)
	}

	util.SuccessLog("Lyrics complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Processed: %d", result.Processed)
	util.InfoLog("  Saved: %d", result.Saved)
	util.InfoLog("  Instrumental: %d", result.Instrumental)
	if len(result.Errors) > 0 {
		util.WarnLog("  Errors: %d (songs stay pending)", len(result.Errors))
	}

	return nil
}
