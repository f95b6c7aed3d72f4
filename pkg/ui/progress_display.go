package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"pinitdown/pkg/models"
)

// ProgressDisplay shows a single self-overwriting progress line for a batch
// of links. In verbose mode every result gets its own line instead.
type ProgressDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	done      int
	succeeded int
	noAsset   int
	failed    int
	bytes     int64
	current   string
	startTime time.Time
	verbose   bool
	now       func() time.Time
}

// NewProgressDisplay creates a display for total links
func NewProgressDisplay(total int, verbose bool) *ProgressDisplay {
	return newProgressDisplay(writer(), total, verbose, time.Now)
}

func newProgressDisplay(w io.Writer, total int, verbose bool, now func() time.Time) *ProgressDisplay {
	return &ProgressDisplay{
		w:         w,
		total:     total,
		startTime: now(),
		verbose:   verbose,
		now:       now,
	}
}

// Start marks a link as in flight
func (p *ProgressDisplay) Start(input string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = input
	if !p.verbose {
		p.printProgress()
	}
}

// Record accounts for a finished link
func (p *ProgressDisplay) Record(r models.DownloadResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	switch r.Outcome {
	case models.OutcomeSuccess:
		p.succeeded++
		p.bytes += r.Bytes
	case models.OutcomeNoAsset:
		p.noAsset++
	default:
		p.failed++
	}
	p.current = ""

	if p.verbose {
		fmt.Fprintln(p.w, FormatResult(r))
		return
	}
	p.printProgress()
}

// Line returns the current progress line without printing it
func (p *ProgressDisplay) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *ProgressDisplay) line() string {
	const barWidth = 20
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d • %s • %s",
		bar,
		p.done,
		p.total,
		humanize.Bytes(uint64(p.bytes)),
		p.eta(),
	)
	if p.current != "" {
		line += " • " + p.current
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}
	return line
}

func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 120), p.line())
}

// eta estimates the remaining time from the average per-link duration
func (p *ProgressDisplay) eta() string {
	if p.done == 0 {
		return "calculating..."
	}
	elapsed := p.now().Sub(p.startTime)
	per := elapsed / time.Duration(p.done)
	return formatDuration(per * time.Duration(p.total-p.done))
}

// Complete prints the closing summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)
	if !p.verbose {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "\n%s Saved %d of %d pins\n", Green("✓"), p.succeeded, p.total)
	fmt.Fprintf(p.w, "  %s %s in %s\n", Dim("•"), humanize.Bytes(uint64(p.bytes)), formatDuration(elapsed))
	if p.noAsset > 0 {
		fmt.Fprintf(p.w, "  %s %d pins had no downloadable media\n", Dim("•"), p.noAsset)
	}
	if p.failed > 0 {
		fmt.Fprintf(p.w, "  %s %d downloads failed\n", Dim("•"), p.failed)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
