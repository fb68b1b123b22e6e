package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/normalize"
	"github.com/franz/netease-audit/internal/resolve"
	"github.com/franz/netease-audit/internal/store"
)

// Sheet names of the audit workbook
const (
	SheetRaw        = "NetEase Raw"
	SheetDuplicates = "Duplicate Profile Accounts"
	SheetSimilar    = "Similar Titles"
)

// Fill colors for flagged rows
const (
	fillRed    = "FF0000"
	fillYellow = "FFFF00"
)

var rawHeader = []any{
	"#", "song_id", "song_name", "song_link", "artist_id", "artist_name", "credited_artists",
	"album_id", "album_name", "company", "release_date", "copyright_id", "popularity", "fee",
	"track_number", "comment_count", "estimated_royalties", "lyric_id", "instrumental",
	"songwriters", "copyright_color",
}

var duplicateHeader = []any{
	"#", "artist_id", "profile_name", "romanized", "platform", "profile_link", "followers",
}

var similarHeader = []any{
	"#", "song_id", "song_name", "song_link", "artists", "album_name", "release_date",
	"version", "search_term", "search_kind", "copyright_id", "fee",
}

// Workbook is the audit export input
type Workbook struct {
	Rows       []classify.Row
	Duplicates []resolve.DuplicateCandidate
	Similar    []store.SearchHit
}

// WriteAuditWorkbook renders the audit to an xlsx file. RED and YELLOW rows
// get a background fill; other colors stay unstyled.
func WriteAuditWorkbook(wb *Workbook, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	fills := make(map[classify.RiskColor]int)
	for color, hex := range map[classify.RiskColor]string{classify.ColorRed: fillRed, classify.ColorYellow: fillYellow} {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1}})
		if err != nil {
			return fmt.Errorf("fill style: %w", err)
		}
		fills[color] = id
	}

	if err := f.SetSheetName("Sheet1", SheetRaw); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeHeader(f, SheetRaw, rawHeader, headerStyle); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rawHeader))
	for i, r := range wb.Rows {
		rowNum := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		values := []any{
			i, r.SongID, r.SongName, r.SongLink, r.ArtistID, r.ArtistName, r.CreditedArtists,
			r.AlbumID, r.AlbumName, r.Label, formatDate(r.ReleaseDate), optionalID(r.CopyrightID),
			r.Popularity, r.Fee, r.TrackNumber, r.CommentCount, r.RoyaltyEstimate, r.LyricVariantID,
			r.Instrumental, strings.Join(r.Songwriters, ","), int(r.Color),
		}
		if err := f.SetSheetRow(SheetRaw, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if style, ok := fills[r.Color]; ok {
			end := lastCol + strconv.Itoa(rowNum)
			if err := f.SetCellStyle(SheetRaw, cell, end, style); err != nil {
				return fmt.Errorf("style row %d: %w", rowNum, err)
			}
		}
	}

	if _, err := f.NewSheet(SheetDuplicates); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHeader(f, SheetDuplicates, duplicateHeader, headerStyle); err != nil {
		return err
	}
	for i, d := range wb.Duplicates {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{i, d.ArtistID, d.ProfileName, d.Romanized, d.Platform, d.ProfileLink, d.Followers}
		if err := f.SetSheetRow(SheetDuplicates, cell, &values); err != nil {
			return fmt.Errorf("write duplicate %d: %w", i, err)
		}
	}

	if len(wb.Similar) > 0 {
		if _, err := f.NewSheet(SheetSimilar); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeHeader(f, SheetSimilar, similarHeader, headerStyle); err != nil {
			return err
		}
		for i, h := range wb.Similar {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			release := ""
			if h.PublishTime > 0 {
				release = formatDate(time.UnixMilli(h.PublishTime).UTC())
			}
			values := []any{
				i, h.SongID, h.SongName, classify.SongLink(h.SongID), h.ArtistNames, h.AlbumName, release,
				normalize.VersionType(h.SongName), h.SearchTerm, h.SearchKind, optionalID(h.CopyrightID), h.Fee,
			}
			if err := f.SetSheetRow(SheetSimilar, cell, &values); err != nil {
				return fmt.Errorf("write similar %d: %w", i, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func optionalID(id *int64) any {
	if id == nil {
		return ""
	}
	return *id
}
