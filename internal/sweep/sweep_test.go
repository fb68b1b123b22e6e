package sweep

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
)

func TestCleanLyricLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "timestamps and credits removed",
			raw:  "[00:00.00] 晴天 - 周杰伦\n[00:01.00] 作词 : 方文山\n[00:02.00] 作曲 : 周杰伦\n[00:10.00] 故事的小黄花\n[00:15.00] 从出生那年就飘着\n",
			want: []string{"故事的小黄花", "从出生那年就飘着"},
		},
		{
			name: "repeated chorus kept once",
			raw:  "title\n[00:01.00]la la\n[00:02.00]hey\n[00:03.00]la la\n",
			want: []string{"la la", "hey"},
		},
		{
			name: "only a title",
			raw:  "[00:00.00] title\n",
			want: nil,
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLyricLines(tt.raw); !slices.Equal(got, tt.want) {
				t.Errorf("CleanLyricLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeSearch struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string][]netease.SearchSong
	fail    map[string]bool
}

func (f *fakeSearch) SearchSongs(ctx context.Context, keywords string, searchType, limit int) ([]netease.SearchSong, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[keywords]++
	if f.fail[keywords] {
		return nil, errors.New("search failed")
	}
	return f.results[keywords], nil
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

func TestRunRecordsHits(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	entries := []store.CatalogEntry{
		{SongID: 1, SongName: "晴天", ArtistID: 7},
		{SongID: 2, SongName: "七里香", ArtistID: 7},
		{SongID: 3, SongName: "晴天 (Live)", ArtistID: 7},
	}
	if _, err := s.SaveCatalog(ctx, 7, entries, nil); err != nil {
		t.Fatal(err)
	}
	err := s.SaveLyricsBatch(ctx, []store.LyricRecord{
		{SongID: 1, VariantID: "3", Songwriters: []string{"方文山", "周杰伦"}, Lyrics: "晴天\n作词 : 方文山\n故事的小黄花\n"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cp := int64(1416)
	src := &fakeSearch{
		results: map[string][]netease.SearchSong{
			"晴天": {
				{ID: 1, Name: "晴天", Artists: []netease.ArtistRef{{ID: 7, Name: "周杰伦"}}},
				{ID: 900, Name: "晴天", Artists: []netease.ArtistRef{{ID: 8, Name: "a"}, {ID: 9, Name: "b"}}, CopyrightID: &cp},
			},
			"故事的小黄花": {{ID: 901, Name: "cover"}},
		},
		fail: map[string]bool{"七里香": true},
	}

	sw := New(&Config{Source: src, Store: s, Concurrency: 2})
	result, err := sw.Run(ctx, Options{Titles: true, Lyrics: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// two distinct titles, one lyric line, one songwriter search
	if result.Searches != 4 || result.Failed != 1 || result.NewHits != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if src.calls["晴天"] != 1 {
		t.Errorf("live version should share the studio title search, calls %v", src.calls)
	}
	if src.calls["方文山 周杰伦"] != 1 {
		t.Errorf("expected songwriter search, calls %v", src.calls)
	}

	foreign, err := s.ListSearchHits(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(foreign) != 2 {
		t.Fatalf("expected 2 foreign hits, got %+v", foreign)
	}

	var found bool
	for _, h := range foreign {
		if h.SongID == 900 {
			found = true
			if h.ArtistNames != "a,b" || h.ArtistIDs != "8,9" || h.SearchKind != KindTitle {
				t.Errorf("unexpected hit %+v", h)
			}
			if h.CopyrightID == nil || *h.CopyrightID != cp {
				t.Errorf("copyright id not kept: %v", h.CopyrightID)
			}
		}
	}
	if !found {
		t.Error("expected hit for song 900")
	}

	all, err := s.ListSearchHits(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected own hit to be stored, got %d hits", len(all))
	}

	// rerun stores nothing new
	result, err = sw.Run(ctx, Options{Titles: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.NewHits != 0 {
		t.Errorf("expected no new hits on rerun, got %d", result.NewHits)
	}
}

func TestRunNothingSelected(t *testing.T) {
	s := openStore(t)
	src := &fakeSearch{}

	result, err := New(&Config{Source: src, Store: s}).Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Searches != 0 || len(src.calls) != 0 {
		t.Errorf("expected no searches, got %+v", result)
	}
}

func TestRunCancelled(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := s.SaveCatalog(ctx, 1, []store.CatalogEntry{{SongID: 1, SongName: "x", ArtistID: 1}}, nil); err != nil {
		t.Fatal(err)
	}
	cancel()

	_, err := New(&Config{Source: &fakeSearch{}, Store: s}).Run(ctx, Options{Titles: true})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
