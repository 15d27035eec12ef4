package precompress

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *Report {
	return newReport(&Config{Root: "/site", Codecs: []Codec{CodecGzip, CodecBrotli}})
}

func TestReportAdd(t *testing.T) {
	r := testReport()

	r.add(WorkResult{Item: WorkItem{Path: "/site/b", Codec: CodecGzip}, InputSize: 100, OutputSize: 40})
	r.add(WorkResult{Item: WorkItem{Path: "/site/b", Codec: CodecBrotli}, InputSize: 100, OutputSize: 30})
	r.add(WorkResult{
		Item: WorkItem{Path: "/site/a", Codec: CodecGzip},
		Err:  newItemError(KindRead, WorkItem{Path: "/site/a", Codec: CodecGzip}, errors.New("gone")),
	})

	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, CodecTotals{Succeeded: 1, Failed: 1, BytesIn: 100, BytesOut: 40}, *r.PerCodec[CodecGzip])
	assert.InDelta(t, 0.3, r.PerCodec[CodecBrotli].Ratio(), 1e-9)

	require.Len(t, r.Failures, 1)
	assert.Equal(t, KindRead, r.Failures[0].Kind)
	assert.Equal(t, "gone", r.Failures[0].Message)
}

func TestReportAddEvent(t *testing.T) {
	r := testReport()
	r.addEvent(WalkEvent{Kind: EventCycleSkipped, Path: "/site/loop"})
	r.addEvent(WalkEvent{Kind: EventOutsideRoot, Path: "/site/out"})
	r.addEvent(WalkEvent{Kind: EventEntryError, Path: "/site/locked"})
	r.addEvent(WalkEvent{Kind: EventAliasSkipped, Path: "/site/alias", Target: "/site/assets"})
	r.addEvent(WalkEvent{Kind: EventFiltered, Path: "/site/a.gz", Message: FilterCompressed})
	r.addEvent(WalkEvent{Kind: EventFiltered, Path: "/site/tiny", Message: FilterMinSize})

	assert.Len(t, r.Cycles, 1)
	assert.Len(t, r.Skipped, 3)
	assert.Equal(t, 2, r.Filtered)
}

func TestReportFinalizeSortsFailures(t *testing.T) {
	r := testReport()
	for _, it := range []WorkItem{
		{Path: "/site/z", Codec: CodecGzip},
		{Path: "/site/a", Codec: CodecGzip},
		{Path: "/site/a", Codec: CodecBrotli},
	} {
		r.add(WorkResult{Item: it, Err: newItemError(KindWrite, it, errors.New("disk full"))})
	}
	r.FinishedAt = r.StartedAt.Add(time.Second)
	r.Finalize()

	assert.Equal(t, []WorkItem{
		{Path: "/site/a", Codec: CodecBrotli},
		{Path: "/site/a", Codec: CodecGzip},
		{Path: "/site/z", Codec: CodecGzip},
	}, []WorkItem{r.Failures[0].Item, r.Failures[1].Item, r.Failures[2].Item})
	assert.Equal(t, time.UTC, r.StartedAt.Location())
	assert.Equal(t, time.Second, r.Duration())
}

func TestReportStatus(t *testing.T) {
	tests := []struct {
		name      string
		failed    int
		pending   int
		cancelled bool
		status    Status
		exit      int
		err       error
	}{
		{"clean", 0, 0, false, StatusSucceeded, ExitOK, nil},
		{"failures", 2, 0, false, StatusPartialFailure, ExitItemFailures, nil},
		{"cancelled", 0, 3, true, StatusCancelled, ExitCancelled, ErrCancelled},
		{"cancelled with failures", 1, 3, true, StatusCancelled, ExitCancelled, ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testReport()
			r.Total = 10
			r.Failed = tt.failed
			r.Pending = tt.pending
			r.Succeeded = r.Total - tt.failed - tt.pending
			r.Cancelled = tt.cancelled

			assert.Equal(t, tt.status, r.Status())
			assert.Equal(t, tt.exit, r.ExitCode())
			switch {
			case tt.status == StatusSucceeded:
				assert.NoError(t, r.Err())
			case tt.err != nil:
				assert.ErrorIs(t, r.Err(), tt.err)
			default:
				assert.Error(t, r.Err())
			}
		})
	}
}

func TestReportSummary(t *testing.T) {
	r := testReport()
	r.Files = 1
	r.Total = 2
	r.add(WorkResult{Item: WorkItem{Path: "/site/a", Codec: CodecGzip}, InputSize: 1000, OutputSize: 250})
	r.add(WorkResult{Item: WorkItem{Path: "/site/a", Codec: CodecBrotli}, InputSize: 1000, OutputSize: 200})

	assert.Equal(t, "compressed 1 files into 2 outputs; gzip 75.0% saved; brotli 80.0% saved", r.Summary())

	r.Files = 2
	r.Total = 4
	r.Pending = 2
	r.Cancelled = true
	assert.Contains(t, r.Summary(), "cancelled after 2 of 4 items (0 failed, 2 pending)")
}

func TestReportJSON(t *testing.T) {
	r := testReport()
	r.add(WorkResult{Item: WorkItem{Path: "/site/a", Codec: CodecGzip}, InputSize: 10, OutputSize: 5})
	r.Finalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "/site", got["root"])
	assert.Equal(t, []any{"gzip", "brotli"}, got["codecs"])
	assert.Equal(t, []any{}, got["failures"])
	assert.Contains(t, got["per_codec"], "gzip")
}
