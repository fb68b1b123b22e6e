package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/franz/netease-audit/internal/util"
)

// Engagement is the per-song engagement data used for classification
type Engagement struct {
	SongID          int64
	CommentCount    int64
	CreditedArtists []string
}

// CreditedArtistNames joins the credited artists for display
func (e Engagement) CreditedArtistNames() string {
	return strings.Join(e.CreditedArtists, ",")
}

// Engagement fetches credited artists for every song in batched detail
// calls and the comment count of each song individually. Every requested
// song gets an entry; missing data stays zero.
func (e *Enricher) Engagement(ctx context.Context, songIDs []int64) (map[int64]Engagement, error) {
	ids := distinct(songIDs)
	result := make(map[int64]Engagement, len(ids))
	for _, id := range ids {
		result[id] = Engagement{SongID: id}
	}

	util.InfoLog("Fetching engagement for %d songs", len(ids))

	for start := 0; start < len(ids); start += e.detailBatchSize {
		batch := ids[start:min(start+e.detailBatchSize, len(ids))]
		songs, err := e.songs.SongDetails(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			util.WarnLog("Song details for %d songs: %v", len(batch), err)
			continue
		}
		for _, s := range songs {
			if eng, ok := result[s.ID]; ok {
				eng.CreditedArtists = s.ArtistNames()
				result[s.ID] = eng
			}
		}
	}

	var mu sync.Mutex
	progress := util.NewProgress("comments", len(ids))

	err := forEach(ctx, e.concurrency, ids, func(ctx context.Context, id int64) {
		count, err := e.songs.CommentCount(ctx, id)
		e.logger.LogEngagement(id, count, err)

		mu.Lock()
		defer mu.Unlock()
		progress.Add(1)
		if err != nil {
			util.WarnLog("Comment count for song %d: %v", id, err)
			return
		}
		eng := result[id]
		eng.CommentCount = count
		result[id] = eng
	})
	progress.Finish()

	return result, err
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
