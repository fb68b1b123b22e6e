package resolve

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Romanize renders Han characters as toneless pinyin syllables and keeps
// everything else as written, e.g. "周杰伦 Jay" -> "zhou jie lun Jay".
func Romanize(name string) string {
	var parts []string
	var run []rune
	han := false

	flush := func() {
		if len(run) == 0 {
			return
		}
		seg := string(run)
		if han {
			parts = append(parts, pinyin.LazyConvert(seg, nil)...)
		} else if t := strings.TrimSpace(seg); t != "" {
			parts = append(parts, t)
		}
		run = run[:0]
	}

	for _, r := range name {
		isHan := unicode.Is(unicode.Han, r)
		if isHan != han {
			flush()
			han = isHan
		}
		run = append(run, r)
	}
	flush()

	return strings.Join(parts, " ")
}
