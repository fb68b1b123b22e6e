package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/netease-audit/internal/sweep"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Search NetEase for songs reusing stored titles or lyrics",
	Long: `Search the whole NetEase catalog for possible infringements.

--titles searches every stored song title. --lyrics searches every distinct
lyric line (timestamps and credit lines removed) and each song's joined
songwriter names. Without either flag both sweeps run. Hits are stored
once per song; hits on the audited catalog itself are flagged as own.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().Bool("titles", false, "Search stored song titles")
	sweepCmd.Flags().Bool("lyrics", false, "Search stored lyric lines and songwriters")
	sweepCmd.Flags().Int("limit", 30, "Results per search")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	titles, _ := cmd.Flags().GetBool("titles")
	lyrics, _ := cmd.Flags().GetBool("lyrics")
	limit, _ := cmd.Flags().GetInt("limit")
	if !titles && !lyrics {
		titles, lyrics = true, true
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	sweeper := sweep.New(&sweep.Config{
		Source:      newClient(),
		Store:       db,
		Concurrency: concurrency(),
		PerSearch:   limit,
		Logger:      logger,
	})

	util.InfoLog("=== Infringement Sweep ===")
	startTime := time.Now()

	result, err := sweeper.Run(ctx, sweep.Options{Titles: titles, Lyrics: lyrics})
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	foreign, own, err := db.CountSearchHits(ctx)
	if err != nil {
		return err
	}

	util.InfoLog("Sweep finished in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Searches: %s", humanize.Comma(int64(result.Searches)))
	util.InfoLog("  New hits: %s", humanize.Comma(int64(result.NewHits)))
	util.InfoLog("  Stored hits: %s foreign, %s own", humanize.Comma(int64(foreign)), humanize.Comma(int64(own)))
	if result.Failed > 0 {
		util.WarnLog("  Failed searches: %d", result.Failed)
	}

	return nil
}
