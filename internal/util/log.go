package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLogLevel = LevelInfo
	useColors       = true

	// fileSink receives an uncoloured copy of every console line when set
	fileSink   io.WriteCloser
	fileSinkMu sync.Mutex
)

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		currentLogLevel = LevelDebug
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(quiet bool) {
	if quiet {
		currentLogLevel = LevelError
	}
}

// IsQuiet reports whether only errors are being shown
func IsQuiet() bool {
	return currentLogLevel >= LevelError
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	useColors = enabled
}

// SetLogFile tees all log output into a size-rotated file.
// An empty path disables the file sink.
func SetLogFile(path string, maxSizeMB, maxBackups, maxAgeDays int) {
	fileSinkMu.Lock()
	defer fileSinkMu.Unlock()

	if fileSink != nil {
		fileSink.Close()
		fileSink = nil
	}
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}

	fileSink = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
}

// CloseLogFile flushes and closes the file sink, if any
func CloseLogFile() {
	SetLogFile("", 0, 0, 0)
}

func colorize(color string, text string) string {
	if !useColors {
		return text
	}
	reset := "\033[0m"
	return color + text + reset
}

func emit(level LogLevel, color, tag, format string, args ...interface{}) {
	if currentLogLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := timestamp()
	fmt.Fprintf(os.Stderr, "%s %s %s\n", colorize(color, ts), tag, msg)

	fileSinkMu.Lock()
	if fileSink != nil {
		fmt.Fprintf(fileSink, "%s %s %s\n", time.Now().Format(time.RFC3339), tag, msg)
	}
	fileSinkMu.Unlock()
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	emit(LevelDebug, "\033[90m", "[DEBUG]", format, args...)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	emit(LevelInfo, "\033[36m", "[INFO] ", format, args...)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	emit(LevelWarn, "\033[33m", "[WARN] ", format, args...)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	emit(LevelError, "\033[31m", "[ERROR]", format, args...)
}

// SuccessLog logs success messages (always shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	emit(LevelInfo, "\033[32m", "[OK]   ", format, args...)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}
