package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// NoVariant marks a lyric record without translation-user metadata
const NoVariant = "none"

// Lyricist and composer lines run up to a newline, written either as a
// real line break or as the two-character escape, or to the end of the text.
var (
	lyricistPattern = regexp.MustCompile(`作词 : (.*?)(?:\\n|\n|$)`)
	composerPattern = regexp.MustCompile(`作曲 : (.*?)(?:\\n|\n|$)`)
)

// ExtractSongwriters returns lyricists followed by composers, trimmed,
// NFKC-folded and de-duplicated in order of appearance.
func ExtractSongwriters(lyrics string) []string {
	var writers []string
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{lyricistPattern, composerPattern} {
		for _, m := range re.FindAllStringSubmatch(lyrics, -1) {
			name := strings.TrimSpace(norm.NFKC.String(m[1]))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			writers = append(writers, name)
		}
	}
	return writers
}

// LyricClassifier turns lyric payloads into records. Instrumental tracks
// get sequence numbers from a counter shared by every caller.
type LyricClassifier struct {
	seq atomic.Int64
}

// NewLyricClassifier creates a classifier whose next instrumental sequence
// number is lastSeq+1
func NewLyricClassifier(lastSeq int64) *LyricClassifier {
	c := &LyricClassifier{}
	c.seq.Store(lastSeq)
	return c
}

// Classify classifies one payload: translation-user metadata wins, then
// the pure-music flag, otherwise a default record.
func (c *LyricClassifier) Classify(songID int64, l *netease.Lyrics) store.LyricRecord {
	rec := store.LyricRecord{SongID: songID, VariantID: NoVariant}
	if l == nil {
		return rec
	}

	raw := ""
	if l.Lrc != nil {
		raw = l.Lrc.Lyric
	}

	switch {
	case l.TransUser != nil:
		rec.VariantID = strconv.FormatInt(l.TransUser.ID, 10)
		rec.Lyrics = raw
		rec.Songwriters = ExtractSongwriters(raw)
		if l.TLyric != nil && l.TLyric.Lyric != "" {
			t := l.TLyric.Lyric
			rec.TranslatedLyrics = &t
		}
	case l.PureMusic:
		rec.VariantID = store.InstrumentalPrefix + strconv.FormatInt(c.seq.Add(1), 10)
		rec.Instrumental = true
		rec.Lyrics = raw
	default:
		rec.Lyrics = raw
	}

	return rec
}

// LyricsResult summarizes a lyric enrichment run
type LyricsResult struct {
	Processed    int
	Saved        int
	Instrumental int
	Errors       []error
}

// Lyrics fetches and classifies lyrics for every song not yet finished and
// persists them in fixed-size batches. Each batch commit marks its songs
// finished, so a restarted run skips them. Failed songs stay pending.
func (e *Enricher) Lyrics(ctx context.Context) (*LyricsResult, error) {
	pending, err := e.store.PendingLyricSongs(ctx, -1)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		util.InfoLog("No songs waiting for lyrics")
		return &LyricsResult{}, nil
	}

	lastSeq, err := e.store.MaxInstrumentalSeq(ctx)
	if err != nil {
		return nil, err
	}
	classifier := NewLyricClassifier(lastSeq)

	util.InfoLog("Fetching lyrics for %d songs", len(pending))

	result := &LyricsResult{}
	var processed, instrumental atomic.Int64
	var errorsMu sync.Mutex

	recordChan := make(chan store.LyricRecord, e.lyricBatchSize*2)

	// Batch writer
	var saved int
	var writeErr error
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		batch := make([]store.LyricRecord, 0, e.lyricBatchSize)

		flush := func() {
			if len(batch) == 0 || writeErr != nil {
				batch = batch[:0]
				return
			}
			// commit even if the run was cancelled mid-batch
			if err := e.store.SaveLyricsBatch(context.WithoutCancel(ctx), batch); err != nil {
				util.ErrorLog("Failed to save lyric batch: %v", err)
				writeErr = err
			} else {
				saved += len(batch)
			}
			batch = batch[:0]
		}

		for rec := range recordChan {
			batch = append(batch, rec)
			if len(batch) >= e.lyricBatchSize {
				flush()
			}
		}
		flush()
	}()

	var progressMu sync.Mutex
	progress := util.NewProgress("lyrics", len(pending))

	poolErr := forEach(ctx, e.concurrency, pending, func(ctx context.Context, songID int64) {
		processed.Add(1)
		defer func() {
			progressMu.Lock()
			progress.Add(1)
			progressMu.Unlock()
		}()

		payload, err := e.lyrics.GetLyrics(ctx, songID)
		if err != nil {
			e.logger.LogLyrics(songID, "", err)
			if ctx.Err() == nil {
				util.WarnLog("Lyrics for song %d: %v", songID, err)
			}
			errorsMu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("song %d: %w", songID, err))
			errorsMu.Unlock()
			return
		}

		rec := classifier.Classify(songID, payload)
		if rec.Instrumental {
			instrumental.Add(1)
		}
		e.logger.LogLyrics(songID, rec.VariantID, nil)
		recordChan <- rec
	})

	close(recordChan)
	writerWg.Wait()
	progress.Finish()

	result.Processed = int(processed.Load())
	result.Instrumental = int(instrumental.Load())
	result.Saved = saved

	if writeErr != nil {
		return result, writeErr
	}
	if poolErr != nil {
		return result, poolErr
	}

	util.SuccessLog("Lyrics complete: %d processed, %d saved, %d instrumental, %d errors",
		result.Processed, result.Saved, result.Instrumental, len(result.Errors))
	return result, nil
}
