package util

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// barActive is held by the Progress currently drawing a bar. Fan-outs
// that run side by side report through log lines instead.
var barActive atomic.Bool

// Progress reports completion of a fixed-size fan-out. It renders a bar on
// a terminal and falls back to periodic InfoLog lines otherwise.
type Progress struct {
	bar   *progressbar.ProgressBar
	label string
	total int
	done  int
	last  time.Time
}

// NewProgress creates a progress reporter for total items
func NewProgress(label string, total int) *Progress {
	return newProgress(label, total, IsTerminal(os.Stdout.Fd()) && !IsQuiet())
}

func newProgress(label string, total int, tty bool) *Progress {
	p := &Progress{label: label, total: total, last: time.Now()}
	if tty && total > 0 && barActive.CompareAndSwap(false, true) {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return p
}

// Add marks n more items as done. Not safe for concurrent use.
func (p *Progress) Add(n int) {
	if p == nil {
		return
	}
	p.done += n
	if p.bar != nil {
		p.bar.Add(n)
		return
	}
	if time.Since(p.last) >= 2*time.Second || p.done == p.total {
		p.last = time.Now()
		if p.total > 0 {
			InfoLog("%s: %d/%d (%.1f%%)", p.label, p.done, p.total, float64(p.done)/float64(p.total)*100)
		}
	}
}

// Finish clears the bar and frees the terminal for the next one
func (p *Progress) Finish() {
	if p != nil && p.bar != nil {
		p.bar.Finish()
		p.bar = nil
		barActive.Store(false)
	}
}
