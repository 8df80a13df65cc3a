package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// progressPrinter draws a single updating progress line.  Updates are
// throttled, but the final one always gets through.
type progressPrinter struct {
	out     io.Writer
	limiter *rate.Limiter
	enabled bool
}

func newProgressPrinter(f *os.File) *progressPrinter {
	return &progressPrinter{
		out:     f,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		enabled: term.IsTerminal(int(f.Fd())),
	}
}

func (p *progressPrinter) Progress(rowsDone, rowsTotal int) {
	if !p.enabled || rowsTotal == 0 {
		return
	}
	if rowsDone < rowsTotal && !p.limiter.Allow() {
		return
	}

	fmt.Fprintf(p.out, "\r%d/%d %d%%", rowsDone, rowsTotal, 100*rowsDone/rowsTotal)
	if rowsDone == rowsTotal {
		fmt.Fprintf(p.out, "\n")
	}
}
