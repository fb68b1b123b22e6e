package audit

import (
	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/enrich"
	"github.com/franz/netease-audit/internal/store"
)

// BuildRows joins catalog entries with their enrichment results by id.
// Each song appears once, taken from its first entry. Songs without an
// album or whose album failed to load keep an empty label and a fallback
// release date; songs without stored lyrics get the default variant.
func BuildRows(
	entries []store.CatalogEntry,
	albums map[int64]store.AlbumDetail,
	engagement map[int64]enrich.Engagement,
	lyrics map[int64]store.LyricRecord,
) []classify.Row {
	rows := make([]classify.Row, 0, len(entries))
	seen := make(map[int64]bool, len(entries))

	for _, e := range entries {
		if seen[e.SongID] {
			continue
		}
		seen[e.SongID] = true

		row := classify.Row{
			SongID:         e.SongID,
			SongName:       e.SongName,
			SongLink:       classify.SongLink(e.SongID),
			ArtistID:       e.ArtistID,
			ArtistName:     e.ArtistName,
			AlbumID:        e.AlbumID,
			ReleaseDate:    enrich.FallbackDate,
			CopyrightID:    e.CopyrightID,
			Popularity:     e.Popularity,
			Fee:            e.Fee,
			TrackNumber:    e.TrackNumber,
			LyricVariantID: enrich.NoVariant,
		}

		if album, ok := albums[e.AlbumID]; ok && e.AlbumID != 0 {
			row.AlbumName = album.Name
			row.Label = album.Label
			row.ReleaseDate = album.ReleaseDate
		}

		if eng, ok := engagement[e.SongID]; ok {
			row.CommentCount = eng.CommentCount
			row.CreditedArtists = eng.CreditedArtistNames()
		}
		if row.CreditedArtists == "" {
			row.CreditedArtists = e.ArtistName
		}

		if rec, ok := lyrics[e.SongID]; ok {
			row.LyricVariantID = rec.VariantID
			row.Instrumental = rec.Instrumental
			row.Songwriters = rec.Songwriters
			row.Translated = rec.TranslatedLyrics != nil
		}

		rows = append(rows, row)
	}

	return rows
}

// ColorCounts tallies rows per risk color
func ColorCounts(rows []classify.Row) map[classify.RiskColor]int {
	counts := make(map[classify.RiskColor]int)
	for _, r := range rows {
		counts[r.Color]++
	}
	return counts
}
