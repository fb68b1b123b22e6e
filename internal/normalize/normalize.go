// Package normalize folds artist names and song titles into comparable
// keys, and recognizes the version markers NetEase titles carry.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Version types returned by VersionType
const (
	VersionStudio       = "studio"
	VersionLive         = "live"
	VersionAcoustic     = "acoustic"
	VersionRemix        = "remix"
	VersionDemo         = "demo"
	VersionInstrumental = "instrumental"
	VersionCover        = "cover"
)

const versionWords = `remix|live|acoustic|demo|instrumental|radio|edit|extended|version|mix|remaster|deluxe|` +
	`bonus|edition|unplugged|session|concert|karaoke|cover|dj|现场|伴奏|纯音乐|翻唱|重制|混音|版`

var (
	versionSuffixes = []*regexp.Regexp{
		// (Live), (DJ版), （伴奏） after NFKC folding
		regexp.MustCompile(`(?i)\s*\([^)]*?(` + versionWords + `).*?\)`),
		// [Live], 【DJ版】
		regexp.MustCompile(`(?i)\s*[\[【][^\]】]*?(` + versionWords + `).*?[\]】]`),
		// trailing "Song Remix", "Song - Live"
		regexp.MustCompile(`(?i)\s+-?\s*(remastered|remix|live|acoustic|demo|instrumental|unplugged)$`),
	}

	whitespace = regexp.MustCompile(`\s+`)

	punctuation = strings.NewReplacer(
		".", "",
		",", "",
		"!", "",
		"?", "",
		"'", "",
		"\"", "",
		":", "",
		";", "",
		"-", " ",
		"_", " ",
		"&", "and",
		"/", "",
		"·", " ",
		"、", " ",
		"《", "",
		"》", "",
	)
)

// Artist normalizes an artist name for comparison
func Artist(name string) string {
	if name == "" {
		return ""
	}

	// NFKC folds full-width latin into ASCII
	name = norm.NFKC.String(name)
	name = strings.ToLower(strings.TrimSpace(name))

	// Handle "Artist, The" -> "the artist"
	if strings.HasSuffix(name, ", the") {
		name = "the " + strings.TrimSuffix(name, ", the")
	}

	name = punctuation.Replace(name)
	return collapseWhitespace(name)
}

// SameArtist reports whether two names normalize to the same key
func SameArtist(a, b string) bool {
	return Artist(a) == Artist(b)
}

// Title normalizes a song title for comparison. Version markers are
// removed, so "晴天 (Live)" and "晴天" share a key.
func Title(title string) string {
	if title == "" {
		return ""
	}

	title = norm.NFKC.String(title)
	title = strings.ToLower(strings.TrimSpace(title))
	title = removeVersionSuffixes(title)
	title = punctuation.Replace(title)
	return collapseWhitespace(title)
}

// SearchTitle returns the base title to search for. Case and punctuation
// are kept; version markers and surplus whitespace are dropped.
func SearchTitle(title string) string {
	title = norm.NFKC.String(title)
	title = removeVersionSuffixes(title)
	return collapseWhitespace(title)
}

func removeVersionSuffixes(s string) string {
	for _, re := range versionSuffixes {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// VersionType detects the version of a song from its title.
// Precedence: live > acoustic > remix > demo > instrumental > cover > studio
func VersionType(title string) string {
	if title == "" {
		return VersionStudio
	}

	lower := strings.ToLower(norm.NFKC.String(title))

	if containsAny(lower, "live", "concert", "现场", "演唱会") {
		return VersionLive
	}
	if containsAny(lower, "acoustic", "unplugged", "不插电") {
		return VersionAcoustic
	}
	// "remaster" contains "remix"-like edits and "edition" contains "edit"
	if containsAny(lower, "remix", " mix", "edit", "dj", "bootleg", "mashup", "混音", "串烧") &&
		!strings.Contains(lower, "remaster") && !strings.Contains(lower, "edition") {
		return VersionRemix
	}
	if containsAny(lower, "demo", "alternate", "outtake", "unreleased") {
		return VersionDemo
	}
	if containsAny(lower, "instrumental", "karaoke", "伴奏", "纯音乐") {
		return VersionInstrumental
	}
	if containsAny(lower, "cover", "翻唱", "翻自") {
		return VersionCover
	}

	return VersionStudio
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
