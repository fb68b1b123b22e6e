// Package resolve turns a profile reference or a free-text name into a
// canonical NetEase artist plus the similar profiles found alongside it.
package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/normalize"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// Source is the subset of the NetEase client the resolver needs
type Source interface {
	GetArtist(ctx context.Context, id int64) (*netease.ArtistProfile, error)
	SearchArtists(ctx context.Context, name string) (*netease.ArtistSearchResult, error)
}

// Result is the outcome of resolving one reference
type Result struct {
	Reference  string
	SearchTerm string
	Canonical  store.Artist
	// Candidates holds every profile found, canonical included, in API order
	Candidates []store.Artist
	Duplicates []store.Artist
}

// ArtistIDs returns the canonical id followed by every duplicate id
func (r *Result) ArtistIDs() []int64 {
	ids := []int64{r.Canonical.ID}
	for _, d := range r.Duplicates {
		ids = append(ids, d.ID)
	}
	return ids
}

// DuplicateCandidate is one suspected duplicate profile of the audited artist
type DuplicateCandidate struct {
	ArtistID    int64
	ProfileName string
	Romanized   string
	Platform    string
	ProfileLink string
	Followers   int64
}

// DuplicateCandidates converts the duplicates into report rows. Follower
// counts are taken from followers when present.
func (r *Result) DuplicateCandidates(followers map[int64]int64) []DuplicateCandidate {
	out := make([]DuplicateCandidate, 0, len(r.Duplicates))
	for _, d := range r.Duplicates {
		fans := d.Followers
		if n, ok := followers[d.ID]; ok {
			fans = n
		}
		out = append(out, DuplicateCandidate{
			ArtistID:    d.ID,
			ProfileName: d.Name,
			Romanized:   Romanize(d.Name),
			Platform:    Platform,
			ProfileLink: ProfileLink(d.ID),
			Followers:   fans,
		})
	}
	return out
}

// Resolver resolves artist references against the remote catalog
type Resolver struct {
	src Source
}

// New creates a resolver
func New(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve resolves a profile URL or a free-text name. For URLs the
// canonical artist is the one the id names; for names it is the first
// candidate whose normalized name matches, else the first candidate.
func (r *Resolver) Resolve(ctx context.Context, reference string) (*Result, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("empty artist reference: %w", util.ErrInvalidConfig)
	}

	var canonicalID int64
	var profile *netease.ArtistProfile
	searchTerm := reference

	if IsProfileReference(reference) {
		id, err := ParseProfileID(reference)
		if err != nil {
			return nil, err
		}
		profile, err = r.src.GetArtist(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup artist %d: %w", id, err)
		}
		canonicalID = id
		searchTerm = profile.Name
		util.DebugLog("Resolved profile %d to '%s'", id, profile.Name)
	}

	candidates, err := r.expandCandidates(ctx, searchTerm)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reference:  reference,
		SearchTerm: searchTerm,
	}

	idx := -1
	if canonicalID != 0 {
		idx = slices.IndexFunc(candidates, func(a store.Artist) bool { return a.ID == canonicalID })
		if idx < 0 {
			// the searched name did not return the profile itself
			candidates = append([]store.Artist{fromProfile(profile, canonicalID)}, candidates...)
			idx = 0
		}
	} else {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no artist matches %q: %w", reference, util.ErrNotFound)
		}
		idx = slices.IndexFunc(candidates, func(a store.Artist) bool { return normalize.SameArtist(a.Name, searchTerm) })
		if idx < 0 {
			// a translated name such as "Jay Chou" identifies the real profile
			idx = slices.IndexFunc(candidates, func(a store.Artist) bool {
				return slices.ContainsFunc(a.Aliases, func(alias string) bool { return normalize.SameArtist(alias, searchTerm) })
			})
		}
		if idx < 0 {
			idx = 0
		}
	}

	result.Canonical = candidates[idx]
	result.Candidates = candidates
	for _, c := range candidates {
		if c.ID != result.Canonical.ID {
			result.Duplicates = append(result.Duplicates, c)
		}
	}

	util.InfoLog("Resolved '%s' to %s (id %d) with %d similar profiles",
		reference, result.Canonical.Name, result.Canonical.ID, len(result.Duplicates))
	return result, nil
}

// expandCandidates searches the name, then searches each translated name
// found in that first response exactly once. Aliases of alias results are
// recorded but not followed.
func (r *Resolver) expandCandidates(ctx context.Context, name string) ([]store.Artist, error) {
	first, err := r.src.SearchArtists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search artist %q: %w", name, err)
	}

	var set candidateSet
	set.add(first.Artists)

	searched := map[string]bool{strings.ToLower(name): true}
	for _, hit := range first.Artists {
		alias := hit.TranslatedName()
		if alias == "" || searched[strings.ToLower(alias)] {
			continue
		}
		searched[strings.ToLower(alias)] = true

		more, err := r.src.SearchArtists(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("search alias %q: %w", alias, err)
		}
		set.add(more.Artists)
	}

	return set.artists, nil
}

// candidateSet is an ordered union of artists keyed by id
type candidateSet struct {
	artists []store.Artist
	index   map[int64]int
}

func (s *candidateSet) add(hits []netease.ArtistHit) {
	if s.index == nil {
		s.index = make(map[int64]int)
	}
	for _, h := range hits {
		alias := h.TranslatedName()
		if i, ok := s.index[h.ID]; ok {
			s.artists[i].Aliases = appendAlias(s.artists[i].Aliases, alias)
			continue
		}
		s.index[h.ID] = len(s.artists)
		s.artists = append(s.artists, store.Artist{
			ID:         h.ID,
			Name:       h.Name,
			Aliases:    appendAlias(nil, alias),
			AlbumCount: h.AlbumSize,
			VideoCount: h.MVSize,
		})
	}
}

func appendAlias(aliases []string, alias string) []string {
	if alias == "" || slices.Contains(aliases, alias) {
		return aliases
	}
	return append(aliases, alias)
}

func fromProfile(p *netease.ArtistProfile, id int64) store.Artist {
	a := store.Artist{ID: id, Name: p.Name, AlbumCount: p.AlbumSize, VideoCount: p.MVSize}
	if p.Trans != "" {
		a.Aliases = []string{p.Trans}
	} else if len(p.TransNames) > 0 {
		a.Aliases = []string{p.TransNames[0]}
	}
	return a
}
