package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventResolve    EventType = "resolve"
	EventCrawl      EventType = "crawl"
	EventAlbum      EventType = "album"
	EventEngagement EventType = "engagement"
	EventLyrics     EventType = "lyrics"
	EventFollowers  EventType = "followers"
	EventSweep      EventType = "sweep"
	EventExport     EventType = "export"
	EventError      EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp time.Time         `json:"ts"`
	RunID     string            `json:"run_id,omitempty"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	ArtistID  int64             `json:"artist_id,omitempty"`
	SongID    int64             `json:"song_id,omitempty"`
	AlbumID   int64             `json:"album_id,omitempty"`
	Count     int               `json:"count,omitempty"`
	Path      string            `json:"path,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil logger is valid and
// drops every event.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level.
// Every event carries a fresh run id.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    uuid.NewString(),
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogResolve logs an artist resolution
func (l *EventLogger) LogResolve(reference string, artistID int64, duplicates int) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventResolve,
		ArtistID: artistID,
		Count:    duplicates,
		Extra:    map[string]string{"reference": reference},
	})
}

// LogCrawl logs one artist's catalog enumeration
func (l *EventLogger) LogCrawl(artistID int64, entries, inserted int, duration time.Duration, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:    level,
		Event:    EventCrawl,
		ArtistID: artistID,
		Count:    entries,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
		Extra:    map[string]string{"inserted": strconv.Itoa(inserted)},
	})
}

// LogAlbum logs an album lookup
func (l *EventLogger) LogAlbum(albumID int64, err error) error {
	level, errMsg := levelFor(err)
	if err == nil {
		level = LevelDebug
	}
	return l.Log(&Event{Level: level, Event: EventAlbum, AlbumID: albumID, Error: errMsg})
}

// LogEngagement logs a per-song engagement lookup
func (l *EventLogger) LogEngagement(songID int64, comments int64, err error) error {
	level, errMsg := levelFor(err)
	if err == nil {
		level = LevelDebug
	}
	return l.Log(&Event{
		Level:  level,
		Event:  EventEngagement,
		SongID: songID,
		Error:  errMsg,
		Extra:  map[string]string{"comments": strconv.FormatInt(comments, 10)},
	})
}

// LogLyrics logs a lyric fetch and its classification
func (l *EventLogger) LogLyrics(songID int64, variantID string, err error) error {
	level, errMsg := levelFor(err)
	if err == nil {
		level = LevelDebug
	}
	return l.Log(&Event{
		Level:  level,
		Event:  EventLyrics,
		SongID: songID,
		Error:  errMsg,
		Extra:  map[string]string{"variant_id": variantID},
	})
}

// LogSweep logs one sweep search
func (l *EventLogger) LogSweep(kind, term string, hits int, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level: level,
		Event: EventSweep,
		Count: hits,
		Error: errMsg,
		Extra: map[string]string{"kind": kind, "term": term},
	})
}

// LogExport logs a written report artifact
func (l *EventLogger) LogExport(path string, rows int) error {
	return l.Log(&Event{Level: LevelInfo, Event: EventExport, Path: path, Count: rows})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the id stamped on every event of this run
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

func levelFor(err error) (EventLevel, string) {
	if err != nil {
		return LevelError, err.Error()
	}
	return LevelInfo, ""
}
