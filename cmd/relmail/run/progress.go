package run

import (
	"fmt"
	"io"
)

// progressEvery is how many read events pass between two progress lines.
const progressEvery = 10

// progressPrinter redraws a single upload progress line on w.
type progressPrinter struct {
	w      io.Writer
	every  int
	events int
	done   bool
}

func newProgressPrinter(w io.Writer, every int) *progressPrinter {
	if every <= 0 {
		every = 1
	}
	return &progressPrinter{w: w, every: every}
}

func (p *progressPrinter) report(sent, total int64) {
	if p.done {
		return
	}
	p.events++
	final := total > 0 && sent >= total
	if !final && p.events%p.every != 0 {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(sent) / float64(total) * 100
	}
	_, _ = fmt.Fprintf(p.w, "\r%9s / %-9s [%3.0f%%]", humanBytes(sent), humanBytes(total), pct)
	if final {
		p.done = true
		_, _ = fmt.Fprintln(p.w)
	}
}

func humanBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
