package batch

import (
	"fmt"
	"sync"
	"time"
)

// Timings tracks per-stage durations across one batch run.
type Timings struct {
	mu sync.Mutex

	// Input loading and normalization (observed by the caller).
	LoadTotal      time.Duration
	LoadCount      int64
	NormalizeTotal time.Duration
	NormalizeCount int64

	// Per-row rendering (compose + rasterize + encode).
	RowRenderTotal time.Duration
	RowRenderCount int64

	// Barcode service round trips.
	BarcodeHTTPTotal time.Duration
	BarcodeHTTPCount int64
}

// NewTimings creates a new Timings instance.
func NewTimings() *Timings {
	return &Timings{}
}

// ObserveLoad records the input parse duration.
func (t *Timings) ObserveLoad(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.LoadTotal += duration
	t.LoadCount++
}

// ObserveNormalize records a normalization pass duration.
func (t *Timings) ObserveNormalize(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.NormalizeTotal += duration
	t.NormalizeCount++
}

// ObserveRowRender records one row's full render duration.
func (t *Timings) ObserveRowRender(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RowRenderTotal += duration
	t.RowRenderCount++
}

// ObserveBarcodeHTTP records a barcode service round trip. Wire it to the
// barcode client's ObserveHTTP hook.
func (t *Timings) ObserveBarcodeHTTP(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.BarcodeHTTPTotal += duration
	t.BarcodeHTTPCount++
}

// String returns a formatted summary of all timings.
func (t *Timings) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	avg := func(total time.Duration, count int64) time.Duration {
		if count == 0 {
			return 0
		}
		return total / time.Duration(count)
	}

	return fmt.Sprintf(
		"load: %v (%d ops, avg %v); normalize: %v (%d ops, avg %v); render: %v (%d rows, avg %v); barcode http: %v (%d calls, avg %v)",
		t.LoadTotal, t.LoadCount, avg(t.LoadTotal, t.LoadCount),
		t.NormalizeTotal, t.NormalizeCount, avg(t.NormalizeTotal, t.NormalizeCount),
		t.RowRenderTotal, t.RowRenderCount, avg(t.RowRenderTotal, t.RowRenderCount),
		t.BarcodeHTTPTotal, t.BarcodeHTTPCount, avg(t.BarcodeHTTPTotal, t.BarcodeHTTPCount),
	)
}
