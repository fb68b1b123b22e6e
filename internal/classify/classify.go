// Package classify derives the audit columns of a row: western label
// names, a risk color and a royalty estimate. It performs no I/O.
package classify

import (
	"strconv"
	"strings"
	"time"
)

// RiskColor flags a row for manual review
type RiskColor int

const (
	ColorNone       RiskColor = 0
	ColorRed        RiskColor = 1
	ColorYellow     RiskColor = 2
	ColorGreenMajor RiskColor = 3
)

// String returns the color name
func (c RiskColor) String() string {
	switch c {
	case ColorRed:
		return "RED"
	case ColorYellow:
		return "YELLOW"
	case ColorGreenMajor:
		return "GREEN_MAJOR"
	default:
		return "NONE"
	}
}

// YellowCommentThreshold is the comment count that flags an otherwise
// unclassified row
const YellowCommentThreshold = 3000

// Row is one materialized audit row. It is built per run and never stored.
type Row struct {
	SongID          int64
	SongName        string
	SongLink        string
	ArtistID        int64
	ArtistName      string
	CreditedArtists string
	AlbumID         int64
	AlbumName       string
	Label           string
	ReleaseDate     time.Time
	CopyrightID     *int64
	Popularity      int
	Fee             int
	TrackNumber     int
	CommentCount    int64
	LyricVariantID  string
	Instrumental    bool
	Songwriters     []string
	Translated      bool

	RoyaltyEstimate string
	Color           RiskColor
}

// SongLink returns the public page of a song
func SongLink(songID int64) string {
	return "https://music.163.com/#/song?id=" + strconv.FormatInt(songID, 10)
}

// Classifier applies the reference tables to rows
type Classifier struct {
	ref            *Reference
	correctedBands bool
}

// New creates a classifier. correctedBands selects the royalty band text
// without the historical typos.
func New(ref *Reference, correctedBands bool) *Classifier {
	return &Classifier{ref: ref, correctedBands: correctedBands}
}

// Classify fills the derived columns of every row in place. Labels are
// translated before coloring, so red-label checks see the translated name.
func (c *Classifier) Classify(rows []Row) {
	for i := range rows {
		r := &rows[i]
		r.Label = TranslateLabel(r.Label, c.ref.Labels)
		r.Color = c.Color(r)
		r.RoyaltyEstimate = EstimateRoyalty(r.CommentCount, c.correctedBands)
	}
}

// TranslateLabel suffixes the source name inside label with " - " and the
// western name, using the first rule whose source name occurs in label.
// Earlier rules shadow later ones.
func TranslateLabel(label string, rules []LabelRule) string {
	for _, rule := range rules {
		if strings.Contains(label, rule.Source) {
			return strings.ReplaceAll(label, rule.Source, rule.Source+" - "+rule.Western)
		}
	}
	return label
}

// Color assigns the risk color as a waterfall: a red copyright id or a
// red label gives RED; otherwise a major copyright id gives GREEN_MAJOR;
// otherwise a comment count of at least 3000 gives YELLOW.
func (c *Classifier) Color(r *Row) RiskColor {
	color := ColorNone

	if r.CopyrightID != nil && c.ref.RedCopyrights[*r.CopyrightID] {
		color = ColorRed
	}
	if c.ref.RedLabels[r.Label] {
		color = ColorRed
	}
	if color == ColorNone && r.CopyrightID != nil && c.ref.MajorCopyrights[*r.CopyrightID] {
		color = ColorGreenMajor
	}
	if color == ColorNone && r.CommentCount >= YellowCommentThreshold {
		color = ColorYellow
	}

	return color
}
