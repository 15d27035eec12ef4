package main

import (
	"fmt"
	"io"
	"time"

	"github.com/absfs/precompress"
)

// progress prints a single self-overwriting status line. The run calls update
// from one goroutine, so no locking is needed.
type progress struct {
	w       io.Writer
	done    int
	failed  int
	last    time.Time
	started time.Time
}

func newProgress(w io.Writer) *progress {
	now := time.Now()
	return &progress{w: w, started: now}
}

func (p *progress) update(res precompress.WorkResult) {
	p.done++
	if !res.OK() {
		p.failed++
	}
	if time.Since(p.last) < 100*time.Millisecond {
		return
	}
	p.last = time.Now()
	p.render()
}

func (p *progress) render() {
	fmt.Fprintf(p.w, "\rCompressing: %d outputs, %d failed, %s", p.done, p.failed,
		time.Since(p.started).Truncate(time.Second))
}

func (p *progress) finish() {
	if p.done == 0 {
		return
	}
	p.render()
	fmt.Fprintln(p.w)
}
