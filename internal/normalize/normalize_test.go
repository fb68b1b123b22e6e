package normalize

import (
	"testing"
)

func TestArtist(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Beatles", "the beatles"},
		{"Beatles, The", "the beatles"},
		{"AC/DC", "acdc"},
		{"  Jay   Chou  ", "jay chou"},
		{"Artist-Name", "artist name"},
		{"ＪＡＹ", "jay"},
		{"周杰伦", "周杰伦"},
		{"A·Lin", "a lin"},
		{"", ""},
	}

	for _, tt := range tests {
		result := Artist(tt.input)
		if result != tt.expected {
			t.Errorf("Artist(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestSameArtist(t *testing.T) {
	if !SameArtist("Jay Chou", "jay  chou") {
		t.Error("expected case and spacing to be ignored")
	}
	if SameArtist("周杰伦", "周杰倫") {
		t.Error("simplified and traditional names are different keys")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Basic normalization
		{"Song Title", "song title"},
		{"  Song  Title  ", "song title"},

		// Version suffix removal
		{"Song (Remix)", "song"},
		{"Song [Live]", "song"},
		{"Song - Remix", "song"},
		{"晴天 (Live)", "晴天"},
		{"晴天（伴奏）", "晴天"},
		{"晴天【DJ版】", "晴天"},
		{"晴天 (女生版)", "晴天"},

		// Punctuation removal
		{"Song: Title!", "song title"},
		{"Song & Title", "song and title"},
		{"《晴天》", "晴天"},

		// Full-width folding
		{"ＳＯＮＧ", "song"},

		{"", ""},
	}

	for _, tt := range tests {
		result := Title(tt.input)
		if result != tt.expected {
			t.Errorf("Title(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestSearchTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"晴天 (Live)", "晴天"},
		{"Song Title!", "Song Title!"},
		{"  七里香  ", "七里香"},
		{"告白气球（DJ版）", "告白气球"},
	}

	for _, tt := range tests {
		result := SearchTitle(tt.input)
		if result != tt.expected {
			t.Errorf("SearchTitle(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestVersionType(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Song Title", VersionStudio},
		{"", VersionStudio},
		{"Song Title [2011 Remaster]", VersionStudio},
		{"Song Title (Deluxe Edition)", VersionStudio},
		{"晴天 (Live)", VersionLive},
		{"晴天 (现场版)", VersionLive},
		{"晴天 (Acoustic)", VersionAcoustic},
		{"晴天 (DJ版)", VersionRemix},
		{"Song (Club Remix)", VersionRemix},
		{"Song (Demo)", VersionDemo},
		{"晴天 (伴奏)", VersionInstrumental},
		{"晴天 (翻自 周杰伦)", VersionCover},
		{"Live Acoustic Session", VersionLive},
	}

	for _, tt := range tests {
		result := VersionType(tt.title)
		if result != tt.expected {
			t.Errorf("VersionType(%q) = %q, expected %q", tt.title, result, tt.expected)
		}
	}
}
