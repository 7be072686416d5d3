// Package batch drives the label pipeline across all rows of one input,
// accumulating per-row outcomes without ever aborting on a row failure.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/labelkit/labelgen/internal/layout"
	"github.com/labelkit/labelgen/internal/mapping"
	"github.com/labelkit/labelgen/internal/render"
)

// ProgressFunc is called after each row with the number of completed rows
// and the total. Calls are monotonically increasing and synchronous; the
// callback must be cheap.
type ProgressFunc func(completed, total int)

// PageSink receives successful rasters in original row order. Document
// assembly (PDF or otherwise) lives behind this interface and is not this
// package's concern.
type PageSink interface {
	AddPage(res render.Result) error
}

// Summary aggregates one batch run. Successful+Failed always equals Total,
// which always equals the input row count.
type Summary struct {
	Results    []render.Result
	Successful int
	Failed     int
	Total      int
}

// Runner orchestrates sequential row rendering. Rows are never rendered in
// parallel: the renderer's surface is a single shared drawable reused
// between rows, and the one in-flight barcode request per row bounds load
// on the external service.
type Runner struct {
	renderer *render.RowRenderer
	timings  *Timings
}

// NewRunner creates a batch runner. timings may be nil to disable stage
// accounting.
func NewRunner(renderer *render.RowRenderer, timings *Timings) *Runner {
	return &Runner{renderer: renderer, timings: timings}
}

// Run renders every subject in input order, collecting exactly one result
// per row regardless of success or failure. Row-level errors are data, not
// errors: Run itself only fails on cancellation, checked cooperatively
// between rows. onProgress may be nil.
func (r *Runner) Run(ctx context.Context, subjects []mapping.Subject, d *layout.Descriptor, onProgress ProgressFunc) (*Summary, error) {
	total := len(subjects)
	summary := &Summary{
		Results: make([]render.Result, 0, total),
		Total:   total,
	}

	for i := range subjects {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := time.Now()
		res := r.renderer.RenderRow(ctx, i, &subjects[i], d)
		if r.timings != nil {
			r.timings.ObserveRowRender(time.Since(start))
		}

		summary.Results = append(summary.Results, res)
		if res.Status == render.StatusSuccess {
			summary.Successful++
		} else {
			summary.Failed++
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return summary, nil
}

// Emit feeds the successful rasters into a sink in original row order,
// skipping failed rows, so page ordering reflects input ordering.
func (s *Summary) Emit(sink PageSink) error {
	for _, res := range s.Results {
		if res.Status != render.StatusSuccess {
			continue
		}
		if err := sink.AddPage(res); err != nil {
			return fmt.Errorf("page sink failed on row %d: %w", res.RowIndex, err)
		}
	}
	return nil
}

// Errors returns the failed results, in row order.
func (s *Summary) Errors() []render.Result {
	var failed []render.Result
	for _, res := range s.Results {
		if res.Status == render.StatusError {
			failed = append(failed, res)
		}
	}
	return failed
}
