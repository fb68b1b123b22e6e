package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "nca",
		Short: "NetEase catalog audit - crawl an artist's catalog and flag royalty risks",
		Long: `nca (NetEase Catalog Audit) is a resumable crawler and auditor for the
NetEase Cloud Music catalog. It resolves an artist and its look-alike profiles,
stores the full song catalog, enriches it with albums, comments and lyrics,
and exports a color coded royalty/infringement spreadsheet.`,
		Version:           Version,
		PersistentPreRun:  setupLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { util.CloseLogFile() },
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/example.yaml)")
	rootCmd.PersistentFlags().String("db", "nca-state.db", "state database file")
	rootCmd.PersistentFlags().String("api-host", "", "NetEase API proxy base URL")
	rootCmd.PersistentFlags().String("reference", "", "reference tables file (default is ./configs/reference.yaml)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file (rotated)")
	rootCmd.PersistentFlags().IntP("concurrency", "c", 0, "number of concurrent lookups")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("api.host", rootCmd.PersistentFlags().Lookup("api-host"))
	viper.BindPFlag("reference", rootCmd.PersistentFlags().Lookup("reference"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("example")
		viper.SetConfigType("yaml")
	}

	// NCA_API_HOST and friends
	viper.SetEnvPrefix("NCA")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	viper.SetDefault("log.colors", true)

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command, args []string) {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	util.SetColors(viper.GetBool("log.colors") && util.IsTerminal(os.Stderr.Fd()))

	if path := viper.GetString("log.file"); path != "" {
		util.SetLogFile(path,
			GetConfigInt("log.max_size_mb", 20),
			GetConfigInt("log.max_backups", 3),
			GetConfigInt("log.max_age_days", 28))
	}
}

func main() {
	// Interrupting stops new lookups; finished batches stay committed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
