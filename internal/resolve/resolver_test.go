package resolve

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

type fakeSource struct {
	profiles map[int64]netease.ArtistProfile
	searches map[string][]netease.ArtistHit
	queried  []string
}

func (f *fakeSource) GetArtist(ctx context.Context, id int64) (*netease.ArtistProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, &util.RemoteFetchError{Status: 404, URL: "/artists"}
	}
	return &p, nil
}

func (f *fakeSource) SearchArtists(ctx context.Context, name string) (*netease.ArtistSearchResult, error) {
	f.queried = append(f.queried, name)
	return &netease.ArtistSearchResult{Artists: f.searches[name]}, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		profiles: map[int64]netease.ArtistProfile{
			6452: {ID: 6452, Name: "周杰伦"},
		},
		searches: map[string][]netease.ArtistHit{
			"周杰伦": {
				{ID: 6452, Name: "周杰伦", Trans: "Jay Chou", AlbumSize: 40, MVSize: 300},
				{ID: 11, Name: "周杰伦翻唱"},
			},
			"Jay Chou": {
				{ID: 12, Name: "Jay Chou Fan", Trans: "JC"},
				{ID: 6452, Name: "周杰伦", Trans: "Jay Chou"},
			},
			"JC": {
				{ID: 13, Name: "never reached"},
			},
			"Jay": {
				{ID: 21, Name: "Jay Band"},
				{ID: 22, Name: "Jay Trio"},
			},
		},
	}
}

func TestResolveProfileURL(t *testing.T) {
	src := newFakeSource()
	r := New(src)

	result, err := r.Resolve(context.Background(), "https://music.163.com/#/artist?id=6452")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Canonical.ID != 6452 {
		t.Errorf("expected canonical 6452, got %d", result.Canonical.ID)
	}
	if result.Canonical.VideoCount != 300 {
		t.Errorf("expected video count from search hit, got %d", result.Canonical.VideoCount)
	}

	wantIDs := []int64{11, 12}
	if len(result.Duplicates) != len(wantIDs) {
		t.Fatalf("expected %d duplicates, got %+v", len(wantIDs), result.Duplicates)
	}
	for i, id := range wantIDs {
		if result.Duplicates[i].ID != id {
			t.Errorf("duplicate %d: expected id %d, got %d", i, id, result.Duplicates[i].ID)
		}
	}

	// one level of alias expansion only
	for _, q := range src.queried {
		if q == "JC" {
			t.Error("alias of an alias result must not be searched")
		}
	}
	if len(src.queried) != 2 {
		t.Errorf("expected 2 searches, got %v", src.queried)
	}

	ids := result.ArtistIDs()
	if len(ids) != 3 || ids[0] != 6452 {
		t.Errorf("unexpected artist ids %v", ids)
	}
}

func TestResolveFreeText(t *testing.T) {
	src := newFakeSource()
	r := New(src)

	result, err := r.Resolve(context.Background(), "Jay Chou")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the translated name beats a profile whose name merely contains it
	if result.Canonical.ID != 6452 {
		t.Errorf("expected canonical 6452, got %d", result.Canonical.ID)
	}
	if len(result.Candidates) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(result.Candidates))
	}
	if slices.ContainsFunc(result.Duplicates, func(a store.Artist) bool { return a.ID == 6452 }) {
		t.Error("canonical artist must not be listed as a duplicate")
	}
	if !slices.ContainsFunc(result.Duplicates, func(a store.Artist) bool { return a.ID == 12 }) {
		t.Errorf("expected look-alike 12 among duplicates, got %+v", result.Duplicates)
	}
}

func TestResolveFreeTextNoMatch(t *testing.T) {
	r := New(newFakeSource())

	result, err := r.Resolve(context.Background(), "Jay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// no name or alias match, so the first candidate wins
	if result.Canonical.ID != 21 {
		t.Errorf("expected canonical 21, got %d", result.Canonical.ID)
	}
}

func TestResolveFreeTextExactMatch(t *testing.T) {
	r := New(newFakeSource())

	result, err := r.Resolve(context.Background(), "周杰伦")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Canonical.ID != 6452 {
		t.Errorf("expected canonical 6452, got %d", result.Canonical.ID)
	}
	if len(result.Canonical.Aliases) != 1 || result.Canonical.Aliases[0] != "Jay Chou" {
		t.Errorf("expected alias Jay Chou, got %v", result.Canonical.Aliases)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	r := New(newFakeSource())

	_, err := r.Resolve(context.Background(), "nobody at all")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveMalformedURL(t *testing.T) {
	r := New(newFakeSource())

	_, err := r.Resolve(context.Background(), "https://music.163.com/#/artist?userid=5")
	var malformed *util.MalformedReferenceError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedReferenceError, got %v", err)
	}
}

func TestResolveLookupFailure(t *testing.T) {
	r := New(newFakeSource())

	_, err := r.Resolve(context.Background(), "https://music.163.com/#/artist?id=999")
	var fetchErr *util.RemoteFetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("expected RemoteFetchError, got %v", err)
	}
}

func TestDuplicateCandidates(t *testing.T) {
	r := New(newFakeSource())

	result, err := r.Resolve(context.Background(), "周杰伦")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dups := result.DuplicateCandidates(map[int64]int64{11: 77})
	if len(dups) != 2 {
		t.Fatalf("expected 2 duplicates, got %d", len(dups))
	}
	if dups[0].Followers != 77 || dups[0].Platform != Platform {
		t.Errorf("unexpected duplicate row %+v", dups[0])
	}
	if dups[0].ProfileLink != "https://music.163.com/#/artist?id=11" {
		t.Errorf("unexpected link %q", dups[0].ProfileLink)
	}
	if dups[0].Romanized != "zhou jie lun fan chang" {
		t.Errorf("unexpected romanization %q", dups[0].Romanized)
	}
}
