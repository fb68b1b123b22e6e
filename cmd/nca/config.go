package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franz/netease-audit/internal/audit"
	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/viper"
)

// api.host -> NCA_API_HOST
var envKeyReplacer = strings.NewReplacer(".", "_")

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (NCA_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigFloat retrieves a float config value with proper precedence
func GetConfigFloat(key string, defaultValue float64) float64 {
	val := viper.GetFloat64(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigDuration retrieves a duration config value with proper precedence
func GetConfigDuration(key string, defaultValue time.Duration) time.Duration {
	val := viper.GetDuration(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

func openStore() (*store.Store, error) {
	dbPath := GetConfigString("db", "nca-state.db")
	util.InfoLog("Opening database: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func newClient() *netease.Client {
	return netease.NewClient(netease.Options{
		BaseURL:       GetConfigString("api.host", netease.DefaultBaseURL),
		Timeout:       GetConfigDuration("api.timeout", 30*time.Second),
		RatePerSecond: GetConfigFloat("api.rate", 5),
		Retries:       GetConfigInt("api.retries", 3),
	})
}

// newAlbumCache wraps client album lookups with the persistent album cache
func newAlbumCache(db *store.Store, client *netease.Client) (*netease.Cache, error) {
	cache := netease.NewCache(db.DB(), client)
	if err := cache.EnsureSchema(); err != nil {
		return nil, err
	}
	if maxAge := GetConfigDuration("cache.max_age", 0); maxAge > 0 {
		removed, err := cache.ClearOldEntries(context.Background(), maxAge)
		if err != nil {
			util.WarnLog("Failed to expire album cache: %v", err)
		} else if removed > 0 {
			util.DebugLog("Expired %d cached albums older than %s", removed, maxAge)
		}
	}
	return cache, nil
}

func newEventLogger() *report.EventLogger {
	// Create event logger with appropriate log level
	logLevel := report.LevelInfo
	if GetConfigBool("quiet") {
		logLevel = report.LevelWarning
	} else if GetConfigBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}
	return logger
}

func loadReference() (*classify.Reference, error) {
	path := GetConfigString("reference", "./configs/reference.yaml")
	ref, err := classify.LoadReference(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables from %s: %w", path, err)
	}
	util.DebugLog("Loaded %d label rules, %d red and %d major copyright ids",
		len(ref.Labels), len(ref.RedCopyrights), len(ref.MajorCopyrights))
	return ref, nil
}

func concurrency() int {
	return GetConfigInt("concurrency", 8)
}

// newPipeline wires the audit stages to the API client. ref may be nil for
// commands that never classify.
func newPipeline(db *store.Store, logger *report.EventLogger, ref *classify.Reference) (*audit.Pipeline, error) {
	client := newClient()
	albums, err := newAlbumCache(db, client)
	if err != nil {
		return nil, err
	}

	return audit.New(&audit.Config{
		Source:          client,
		Albums:          albums,
		Store:           db,
		Reference:       ref,
		CorrectedBands:  GetConfigBool("royalty.corrected_bands"),
		Concurrency:     concurrency(),
		DetailBatchSize: GetConfigInt("detail.batch_size", 500),
		LyricBatchSize:  GetConfigInt("lyrics.batch_size", 50),
		Logger:          logger,
	})
}
