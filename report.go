package precompress

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the overall outcome of a run
type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusPartialFailure Status = "partial_failure"
	StatusCancelled      Status = "cancelled"
)

// Exit codes suggested for command line callers
const (
	ExitOK            = 0
	ExitItemFailures  = 1
	ExitInvalidConfig = 2
	ExitCancelled     = 3
)

// Failure records one failed work item
type Failure struct {
	Item    WorkItem  `json:"item"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// CodecTotals aggregates the results of one codec
type CodecTotals struct {
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	BytesIn   int64 `json:"bytes_in"`
	BytesOut  int64 `json:"bytes_out"`
}

// Ratio returns BytesOut/BytesIn, lower is better
func (t CodecTotals) Ratio() float64 {
	return GetCompressionRatio(t.BytesIn, t.BytesOut)
}

// Report is the result of one run
type Report struct {
	Root   string  `json:"root"`
	Codecs []Codec `json:"codecs"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Files is the number of files enumerated; Total is Files x len(Codecs)
	Files int `json:"files"`
	Total int `json:"total"`

	// Succeeded + Failed + Pending == Total
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`

	Cancelled bool `json:"cancelled"`

	Failures []Failure  `json:"failures"`
	Cycles   []WalkEvent `json:"cycles"`
	Skipped  []WalkEvent `json:"skipped"`
	Filtered int         `json:"filtered"`

	PerCodec map[Codec]*CodecTotals `json:"per_codec"`
}

func newReport(cfg *Config) *Report {
	r := &Report{
		Root:      cfg.Root,
		Codecs:    append([]Codec(nil), cfg.Codecs...),
		StartedAt: time.Now(),
		Failures:  []Failure{},
		Cycles:    []WalkEvent{},
		Skipped:   []WalkEvent{},
		PerCodec:  make(map[Codec]*CodecTotals, len(cfg.Codecs)),
	}
	for _, codec := range cfg.Codecs {
		r.PerCodec[codec] = &CodecTotals{}
	}
	return r
}

// add folds one result into the report. Only the collecting goroutine calls it.
func (r *Report) add(res WorkResult) {
	totals, ok := r.PerCodec[res.Item.Codec]
	if !ok {
		totals = &CodecTotals{}
		r.PerCodec[res.Item.Codec] = totals
	}

	if res.Err != nil {
		r.Failed++
		totals.Failed++
		r.Failures = append(r.Failures, Failure{
			Item:    res.Item,
			Kind:    res.Err.Kind,
			Message: res.Err.Err.Error(),
		})
		return
	}
	r.Succeeded++
	totals.Succeeded++
	totals.BytesIn += res.InputSize
	totals.BytesOut += res.OutputSize
}

func (r *Report) addEvent(ev WalkEvent) {
	switch ev.Kind {
	case EventCycleSkipped:
		r.Cycles = append(r.Cycles, ev)
	case EventFiltered:
		r.Filtered++
	default:
		r.Skipped = append(r.Skipped, ev)
	}
}

// Finalize normalizes times to UTC and sorts failures by path, then codec
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Failures, func(i, j int) bool {
		a, b := r.Failures[i].Item, r.Failures[j].Item
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Codec < b.Codec
	})
}

// Status distinguishes a clean run, a run with item failures and a cancelled run
func (r *Report) Status() Status {
	switch {
	case r.Cancelled:
		return StatusCancelled
	case r.Failed > 0:
		return StatusPartialFailure
	default:
		return StatusSucceeded
	}
}

// Err returns nil for a clean run, ErrCancelled for a cancelled one and an
// error naming the failure count otherwise
func (r *Report) Err() error {
	switch r.Status() {
	case StatusCancelled:
		return fmt.Errorf("%w: %d of %d items pending", ErrCancelled, r.Pending, r.Total)
	case StatusPartialFailure:
		return fmt.Errorf("precompress: %d of %d items failed", r.Failed, r.Total)
	default:
		return nil
	}
}

// ExitCode maps Status to a process exit code
func (r *Report) ExitCode() int {
	switch r.Status() {
	case StatusCancelled:
		return ExitCancelled
	case StatusPartialFailure:
		return ExitItemFailures
	default:
		return ExitOK
	}
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary renders a one-line description of the run
func (r *Report) Summary() string {
	var b strings.Builder
	switch r.Status() {
	case StatusSucceeded:
		fmt.Fprintf(&b, "compressed %d files into %d outputs", r.Files, r.Succeeded)
	case StatusPartialFailure:
		fmt.Fprintf(&b, "compressed %d files: %d outputs, %d failures", r.Files, r.Succeeded, r.Failed)
	case StatusCancelled:
		fmt.Fprintf(&b, "cancelled after %d of %d items (%d failed, %d pending)",
			r.Succeeded+r.Failed, r.Total, r.Failed, r.Pending)
	}
	for _, codec := range r.Codecs {
		t := r.PerCodec[codec]
		if t == nil || t.BytesIn == 0 {
			continue
		}
		fmt.Fprintf(&b, "; %s %.1f%% saved", codec, GetCompressionPercentage(t.BytesIn, t.BytesOut))
	}
	if n := len(r.Cycles); n > 0 {
		fmt.Fprintf(&b, "; %d symlink cycles skipped", n)
	}
	return b.String()
}
