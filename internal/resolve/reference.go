package resolve

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/franz/netease-audit/internal/util"
)

const (
	// Platform names the provider on duplicate profile rows
	Platform = "Netease Cloud Music"

	profileLinkBase = "https://music.163.com/#/artist?id="
)

// ProfileLink returns the public profile URL of an artist
func ProfileLink(artistID int64) string {
	return profileLinkBase + strconv.FormatInt(artistID, 10)
}

// IsProfileReference reports whether input should be parsed as a profile
// URL (or bare id) rather than searched as a name.
func IsProfileReference(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	if strings.Contains(s, "://") || strings.Contains(s, "music.163.com") || strings.Contains(s, "id=") {
		return true
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ParseProfileID extracts the id query parameter from a profile URL. The
// parameter may appear anywhere among &-joined parameters; the fragment
// form "#/artist?id=" is accepted. A bare numeric id is returned as is.
func ParseProfileID(reference string) (int64, error) {
	s := strings.TrimSpace(reference)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return id, nil
	}

	query := s
	if i := strings.LastIndex(s, "?"); i >= 0 {
		query = s[i+1:]
	}

	for _, param := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(param, "=")
		if key != "id" {
			continue
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return 0, &util.MalformedReferenceError{Reference: reference}
		}
		return id, nil
	}

	return 0, &util.MalformedReferenceError{Reference: reference}
}
