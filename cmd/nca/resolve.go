package main

import (
	"fmt"

	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <profile-url|name>",
	Short: "Resolve an artist and queue it with its similar profiles",
	Long: `Resolve a NetEase profile URL or an artist name.

The canonical artist and every similar profile found through the name and
its translated aliases are stored and added to the crawl queue. Running
the command again for the same artist changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	res, err := pipeline.Resolve(ctx, args[0])
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	util.InfoLog("")
	util.InfoLog("Canonical: %s (%d)", res.Canonical.Name, res.Canonical.ID)
	for _, d := range res.Duplicates {
		util.InfoLog("  similar: %s (%d)", d.Name, d.ID)
	}
	util.SuccessLog("Queued %d artists. Run 'nca crawl' next.", len(res.ArtistIDs()))

	return nil
}
