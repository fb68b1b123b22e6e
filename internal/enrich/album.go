package enrich

import (
	"context"
	"slices"
	"sync"

	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// MissingLabel is recorded when an album carries no company
const MissingLabel = "null"

// AlbumIDs returns the distinct non-zero album ids of entries, sorted
func AlbumIDs(entries []store.CatalogEntry) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, e := range entries {
		if e.AlbumID == 0 || seen[e.AlbumID] {
			continue
		}
		seen[e.AlbumID] = true
		ids = append(ids, e.AlbumID)
	}
	slices.Sort(ids)
	return ids
}

// Albums fetches each distinct album referenced by entries exactly once.
// Albums that fail to load are logged and left out of the result.
func (e *Enricher) Albums(ctx context.Context, entries []store.CatalogEntry) (map[int64]store.AlbumDetail, error) {
	ids := AlbumIDs(entries)
	util.InfoLog("Fetching %d albums for %d catalog entries", len(ids), len(entries))

	var mu sync.Mutex
	details := make(map[int64]store.AlbumDetail, len(ids))
	progress := util.NewProgress("albums", len(ids))

	err := forEach(ctx, e.concurrency, ids, func(ctx context.Context, id int64) {
		album, err := e.albums.GetAlbum(ctx, id)
		e.logger.LogAlbum(id, err)

		mu.Lock()
		defer mu.Unlock()
		progress.Add(1)
		if err != nil {
			util.WarnLog("Album %d: %v", id, err)
			return
		}

		label := album.Company
		if label == "" {
			label = MissingLabel
		}
		details[id] = store.AlbumDetail{
			AlbumID:     id,
			Name:        album.Name,
			Label:       label,
			ReleaseDate: ReleaseDate(album.PublishTime),
		}
	})
	progress.Finish()

	return details, err
}
