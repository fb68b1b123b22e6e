package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure nca can operate correctly.

This command checks:
- SQLite version compatibility
- Database accessibility and integrity
- Reference tables (labels, copyright ids)
- NetEase API proxy reachability
- Artifacts directory permissions

Use this command to troubleshoot issues before running an audit.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== NCA Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{
		checkSQLite(),
		checkDatabase(viper.GetString("db")),
		checkReference(GetConfigString("reference", "./configs/reference.yaml")),
		checkAPI(cmd.Context(), GetConfigString("api.host", netease.DefaultBaseURL)),
		checkArtifactsDirectory("artifacts"),
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running nca.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! System is ready for nca operations.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is pure Go, so there is nothing to install
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	ctx := context.Background()
	artists, _ := db.CountArtists(ctx)
	songs, _, _ := db.CatalogCounts(ctx)

	return checkResult{
		name: "Database",
		message: fmt.Sprintf("%s (%s, %d artists, %s songs)",
			dbPath, humanize.Bytes(uint64(info.Size())), artists, humanize.Comma(int64(songs))),
	}
}

// checkReference verifies the reference tables parse
func checkReference(path string) checkResult {
	ref, err := classify.LoadReference(path)
	if err != nil {
		return checkResult{
			name:    "Reference tables",
			error:   true,
			message: err.Error(),
		}
	}

	res := checkResult{
		name: "Reference tables",
		message: fmt.Sprintf("%s (%d label rules, %d red ids, %d major ids)",
			path, len(ref.Labels), len(ref.RedCopyrights), len(ref.MajorCopyrights)),
	}
	if len(ref.RedCopyrights) == 0 && len(ref.MajorCopyrights) == 0 {
		res.warning = true
		res.message += " - no copyright ids, only labels and comment counts will color rows"
	}
	return res
}

// checkAPI verifies the API proxy answers HTTP at all
func checkAPI(ctx context.Context, baseURL string) checkResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return checkResult{
			name:    "NetEase API",
			error:   true,
			message: fmt.Sprintf("invalid api.host %q: %v", baseURL, err),
		}
	}
	req.Header.Set("User-Agent", netease.UserAgent)

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return checkResult{
			name:    "NetEase API",
			error:   true,
			message: fmt.Sprintf("%s unreachable: %v", baseURL, err),
		}
	}
	resp.Body.Close()

	res := checkResult{
		name:    "NetEase API",
		message: fmt.Sprintf("%s (HTTP %d in %v)", baseURL, resp.StatusCode, time.Since(start).Round(time.Millisecond)),
	}
	if resp.StatusCode >= 500 {
		res.warning = true
	}
	return res
}

// checkArtifactsDirectory verifies event logs and reports can be written
func checkArtifactsDirectory(path string) checkResult {
	if err := os.MkdirAll(path, 0755); err != nil {
		return checkResult{
			name:    "Artifacts directory",
			error:   true,
			message: fmt.Sprintf("cannot create %s: %v", path, err),
		}
	}

	testFile := filepath.Join(path, ".nca_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Artifacts directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Artifacts directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}
