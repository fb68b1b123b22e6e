package enrich

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
)

func TestExtractSongwriters(t *testing.T) {
	tests := []struct {
		name   string
		lyrics string
		want   []string
	}{
		{
			name:   "real newlines",
			lyrics: "[00:00.00] 作词 : 方文山\n[00:01.00] 作曲 : 周杰伦\n歌词\n",
			want:   []string{"方文山", "周杰伦"},
		},
		{
			name:   "escaped newlines",
			lyrics: `[00:00.00] 作词 : 方文山\n[00:01.00] 作曲 : 周杰伦\n`,
			want:   []string{"方文山", "周杰伦"},
		},
		{
			name:   "credit on the last line",
			lyrics: "[00:00] 作词 : 方文山\n[00:01] 作曲 : 周杰伦",
			want:   []string{"方文山", "周杰伦"},
		},
		{
			name:   "same person twice",
			lyrics: "作词 : 周杰伦\n作曲 : 周杰伦\n",
			want:   []string{"周杰伦"},
		},
		{
			name:   "full width folded",
			lyrics: "作词 : ＡＢＣ \n",
			want:   []string{"ABC"},
		},
		{
			name:   "no markers",
			lyrics: "just words\n",
			want:   nil,
		},
		{
			name:   "marker without newline",
			lyrics: "作词 : 方文山",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSongwriters(tt.lyrics); !slices.Equal(got, tt.want) {
				t.Errorf("ExtractSongwriters() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewLyricClassifier(4)

	translated := c.Classify(1, &netease.Lyrics{
		TransUser: &netease.TransUser{ID: 31},
		PureMusic: true,
		Lrc:       &netease.LyricBlock{Lyric: "作词 : 方文山\n"},
		TLyric:    &netease.LyricBlock{Lyric: "translation"},
	})
	if translated.VariantID != "31" || translated.Instrumental {
		t.Errorf("translation metadata should win, got %+v", translated)
	}
	if translated.TranslatedLyrics == nil || *translated.TranslatedLyrics != "translation" {
		t.Errorf("expected translated lyrics, got %v", translated.TranslatedLyrics)
	}
	if !slices.Equal(translated.Songwriters, []string{"方文山"}) {
		t.Errorf("unexpected songwriters %v", translated.Songwriters)
	}

	first := c.Classify(2, &netease.Lyrics{PureMusic: true})
	second := c.Classify(3, &netease.Lyrics{PureMusic: true})
	if first.VariantID != "pure_music_5" || second.VariantID != "pure_music_6" {
		t.Errorf("expected monotonic instrumental ids, got %s and %s", first.VariantID, second.VariantID)
	}
	if !first.Instrumental || len(first.Songwriters) != 0 {
		t.Errorf("unexpected instrumental record %+v", first)
	}

	plain := c.Classify(4, &netease.Lyrics{Lrc: &netease.LyricBlock{Lyric: "作词 : x\n"}})
	if plain.VariantID != NoVariant || plain.Instrumental || len(plain.Songwriters) != 0 || plain.TranslatedLyrics != nil {
		t.Errorf("expected default record, got %+v", plain)
	}

	empty := c.Classify(5, nil)
	if empty.VariantID != NoVariant {
		t.Errorf("expected default record for nil payload, got %+v", empty)
	}
}

type fakeLyrics struct {
	payloads map[int64]*netease.Lyrics
	fail     map[int64]bool
}

func (f *fakeLyrics) GetLyrics(ctx context.Context, songID int64) (*netease.Lyrics, error) {
	if f.fail[songID] {
		return nil, errors.New("lyric fetch failed")
	}
	if p, ok := f.payloads[songID]; ok {
		return p, nil
	}
	return &netease.Lyrics{}, nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCatalog(t *testing.T, s *store.Store, n int) {
	t.Helper()
	var entries []store.CatalogEntry
	for i := 1; i <= n; i++ {
		entries = append(entries, store.CatalogEntry{SongID: int64(i), SongName: "song", ArtistID: 1})
	}
	if _, err := s.SaveCatalog(context.Background(), 1, entries, nil); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func TestLyricsBatchesAndResumes(t *testing.T) {
	s := openStore(t)
	seedCatalog(t, s, 120)
	ctx := context.Background()

	src := &fakeLyrics{
		payloads: map[int64]*netease.Lyrics{
			1: {PureMusic: true},
			2: {PureMusic: true},
			3: {TransUser: &netease.TransUser{ID: 9}, Lrc: &netease.LyricBlock{Lyric: "作词 : 方文山\n"}},
		},
		fail: map[int64]bool{50: true},
	}
	e := New(&Config{Lyrics: src, Store: s, Concurrency: 4, LyricBatchSize: 50})

	result, err := e.Lyrics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Saved != 119 || result.Instrumental != 2 || len(result.Errors) != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	pending, err := s.PendingLyricSongs(ctx, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(pending, []int64{50}) {
		t.Errorf("only the failed song should stay pending, got %v", pending)
	}

	rec, err := s.GetLyrics(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if rec.VariantID != "9" || !slices.Equal(rec.Songwriters, []string{"方文山"}) {
		t.Errorf("unexpected stored record %+v", rec)
	}

	// second run only touches the failed song and continues the sequence
	src.fail = map[int64]bool{}
	src.payloads[50] = &netease.Lyrics{PureMusic: true}
	result, err = e.Lyrics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.Saved != 1 {
		t.Errorf("expected only the pending song to be processed, got %+v", result)
	}

	rec, err = s.GetLyrics(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	if rec.VariantID != "pure_music_3" {
		t.Errorf("expected pure_music_3, got %s", rec.VariantID)
	}
}
