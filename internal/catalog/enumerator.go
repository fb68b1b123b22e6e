// Package catalog pages through artist catalogs and flattens songs into
// one entry per credited artist.
package catalog

import (
	"context"
	"fmt"
	"iter"

	"github.com/franz/netease-audit/internal/netease"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// Source is the subset of the NetEase client the enumerator needs
type Source interface {
	SongCount(ctx context.Context, artistID int64) (int, error)
	CatalogPage(ctx context.Context, artistID int64, offset, limit int) ([]netease.Song, error)
}

// Page is one fetched catalog page of one artist
type Page struct {
	ArtistID int64
	Offset   int
	Entries  []store.CatalogEntry
	// Raw maps song id to the undecoded song payload
	Raw map[int64]string
}

// Enumerator pages artist catalogs
type Enumerator struct {
	src      Source
	pageSize int
}

// New creates an enumerator with the standard page size
func New(src Source) *Enumerator {
	return &Enumerator{src: src, pageSize: netease.PageSize}
}

// Offsets returns the page offsets requested for a catalog of total songs.
// Paging runs while offset < total+pageSize, so one page past the last full
// page is always requested; total=250 yields 0, 100, 200, 300.
func Offsets(total, pageSize int) []int {
	var offsets []int
	for offset := 0; offset < total+pageSize; offset += pageSize {
		offsets = append(offsets, offset)
	}
	return offsets
}

// Pages lazily fetches every catalog page of one artist. A failed fetch is
// yielded once as an error and ends the sequence.
func (e *Enumerator) Pages(ctx context.Context, artistID int64) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		total, err := e.src.SongCount(ctx, artistID)
		if err != nil {
			yield(Page{ArtistID: artistID}, fmt.Errorf("song count for artist %d: %w", artistID, err))
			return
		}
		util.DebugLog("Artist %d reports %d songs", artistID, total)

		for _, offset := range Offsets(total, e.pageSize) {
			if err := ctx.Err(); err != nil {
				yield(Page{ArtistID: artistID, Offset: offset}, err)
				return
			}

			songs, err := e.src.CatalogPage(ctx, artistID, offset, e.pageSize)
			if err != nil {
				yield(Page{ArtistID: artistID, Offset: offset},
					fmt.Errorf("catalog page %d of artist %d: %w", offset, artistID, err))
				return
			}

			page := Page{
				ArtistID: artistID,
				Offset:   offset,
				Entries:  Flatten(songs),
				Raw:      make(map[int64]string, len(songs)),
			}
			for _, s := range songs {
				if len(s.Raw) > 0 {
					page.Raw[s.ID] = string(s.Raw)
				}
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

// Enumerate lazily yields the catalog entries of every artist in order.
// A page failure is yielded as an error and aborts only that artist; the
// caller decides whether to keep iterating. Not restartable.
func (e *Enumerator) Enumerate(ctx context.Context, artistIDs []int64) iter.Seq2[store.CatalogEntry, error] {
	return func(yield func(store.CatalogEntry, error) bool) {
		for _, id := range artistIDs {
			for page, err := range e.Pages(ctx, id) {
				if err != nil {
					if !yield(store.CatalogEntry{ArtistID: id}, err) {
						return
					}
					break
				}
				for _, entry := range page.Entries {
					if !yield(entry, nil) {
						return
					}
				}
			}
		}
	}
}

// Flatten turns songs into one catalog entry per credited artist
func Flatten(songs []netease.Song) []store.CatalogEntry {
	var entries []store.CatalogEntry
	for _, s := range songs {
		for _, a := range s.Artists {
			entries = append(entries, store.CatalogEntry{
				SongID:      s.ID,
				SongName:    s.Name,
				ArtistID:    a.ID,
				ArtistName:  a.Name,
				AlbumID:     s.Album.ID,
				CopyrightID: s.CopyrightID,
				Popularity:  int(s.Pop),
				Fee:         s.Fee,
				TrackNumber: s.TrackNo,
			})
		}
	}
	return entries
}
