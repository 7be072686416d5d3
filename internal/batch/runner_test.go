package batch

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/labelkit/labelgen/internal/barcode"
	"github.com/labelkit/labelgen/internal/compose"
	"github.com/labelkit/labelgen/internal/layout"
	"github.com/labelkit/labelgen/internal/mapping"
	"github.com/labelkit/labelgen/internal/render"
)

type stubBarcodes struct {
	deny map[string]bool
}

func (s *stubBarcodes) Render(_ context.Context, req barcode.Request) (image.Image, error) {
	if s.deny[req.Text] {
		return nil, errors.New("unencodable text")
	}
	return image.NewRGBA(image.Rect(0, 0, 20, 10)), nil
}

func newTestRunner(deny map[string]bool, timings *Timings) *Runner {
	composer := compose.NewComposer(&stubBarcodes{deny: deny}, "")
	return NewRunner(render.NewRowRenderer(composer, 1), timings)
}

func testLayout() *layout.Descriptor {
	return &layout.Descriptor{
		Width: 100, Height: 60, Background: "#FFFFFF",
		Elements: []layout.Element{
			{Kind: layout.KindText, Left: 5, Top: 5, Text: "{{productName}}", FontSize: 10, Fill: "#000000"},
			{Kind: layout.KindBarcode, Left: 5, Top: 25, Width: 60, Height: 25},
		},
	}
}

func subjectsFor(barcodes ...string) []mapping.Subject {
	subjects := make([]mapping.Subject, len(barcodes))
	for i, b := range barcodes {
		subjects[i] = mapping.Subject{
			ProductName:      "Lamp " + string(rune('A'+i)),
			ProductCode:      "L-" + string(rune('1'+i)),
			GS1BarcodeNumber: b,
		}
	}
	return subjects
}

func TestRunAllSuccessful(t *testing.T) {
	runner := newTestRunner(nil, nil)
	subjects := subjectsFor("9300000000017", "9300000000024")

	summary, err := runner.Run(context.Background(), subjects, testLayout(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 2 || summary.Successful != 2 || summary.Failed != 0 {
		t.Errorf("counts = %d/%d/%d, want total 2, successful 2, failed 0",
			summary.Total, summary.Successful, summary.Failed)
	}
	if summary.Successful+summary.Failed != summary.Total {
		t.Errorf("count invariant violated")
	}
}

func TestRunPartialFailure(t *testing.T) {
	// The scenario from the pipeline contract: three rows, the third has
	// an unencodable barcode value. Two labels render, one row fails, the
	// failure names the barcode problem, and neighbors are untouched.
	runner := newTestRunner(map[string]bool{"BAD": true}, nil)
	subjects := subjectsFor("9300000000017", "9300000000024", "BAD")

	summary, err := runner.Run(context.Background(), subjects, testLayout(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Successful != 2 || summary.Failed != 1 || summary.Total != 3 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/3",
			summary.Successful, summary.Failed, summary.Total)
	}

	for i, res := range summary.Results {
		if res.RowIndex != i {
			t.Errorf("Results[%d].RowIndex = %d, order not preserved", i, res.RowIndex)
		}
	}

	if summary.Results[0].Status != render.StatusSuccess || summary.Results[1].Status != render.StatusSuccess {
		t.Errorf("rows 0 and 1 should have succeeded")
	}
	if summary.Results[0].PNG == nil || summary.Results[1].PNG == nil {
		t.Errorf("successful rows must carry rasters")
	}

	bad := summary.Results[2]
	if bad.Status != render.StatusError {
		t.Fatalf("row 2 status = %s, want error", bad.Status)
	}
	if bad.Message == "" {
		t.Errorf("row 2 must carry the barcode failure message")
	}

	failed := summary.Errors()
	if len(failed) != 1 || failed[0].RowIndex != 2 {
		t.Errorf("Errors() = %v, want single failure at row 2", failed)
	}
}

func TestRunProgressCallback(t *testing.T) {
	runner := newTestRunner(map[string]bool{"BAD": true}, nil)
	subjects := subjectsFor("9300000000017", "BAD", "9300000000031")

	var calls [][2]int
	_, err := runner.Run(context.Background(), subjects, testLayout(), func(completed, total int) {
		calls = append(calls, [2]int{completed, total})
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("expected 3 progress calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c[0] != i+1 || c[1] != 3 {
			t.Errorf("call %d = (%d, %d), want (%d, 3)", i, c[0], c[1], i+1)
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	runner := newTestRunner(nil, nil)

	summary, err := runner.Run(context.Background(), nil, testLayout(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 0 || len(summary.Results) != 0 {
		t.Errorf("empty input should yield empty summary, got %+v", summary)
	}
}

func TestRunCancellation(t *testing.T) {
	runner := newTestRunner(nil, nil)
	subjects := subjectsFor("9300000000017", "9300000000024", "9300000000031")

	ctx, cancel := context.WithCancel(context.Background())
	var completed int
	_, err := runner.Run(ctx, subjects, testLayout(), func(done, total int) {
		completed = done
		if done == 1 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if completed != 1 {
		t.Errorf("expected cancellation after first row, completed = %d", completed)
	}
}

func TestRunTimings(t *testing.T) {
	timings := NewTimings()
	runner := newTestRunner(nil, timings)
	subjects := subjectsFor("9300000000017", "9300000000024")

	if _, err := runner.Run(context.Background(), subjects, testLayout(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if timings.RowRenderCount != 2 {
		t.Errorf("RowRenderCount = %d, want 2", timings.RowRenderCount)
	}
	if timings.String() == "" {
		t.Errorf("String() should produce a summary")
	}
}

type collectSink struct {
	indexes []int
	failAt  int
}

func (c *collectSink) AddPage(res render.Result) error {
	if c.failAt > 0 && len(c.indexes) == c.failAt {
		return errors.New("sink full")
	}
	c.indexes = append(c.indexes, res.RowIndex)
	return nil
}

func TestEmitSkipsFailedPreservesOrder(t *testing.T) {
	runner := newTestRunner(map[string]bool{"BAD": true}, nil)
	subjects := subjectsFor("9300000000017", "BAD", "9300000000031", "9300000000048")

	summary, err := runner.Run(context.Background(), subjects, testLayout(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sink := &collectSink{}
	if err := summary.Emit(sink); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	want := []int{0, 2, 3}
	if len(sink.indexes) != len(want) {
		t.Fatalf("sink received %v, want %v", sink.indexes, want)
	}
	for i, idx := range want {
		if sink.indexes[i] != idx {
			t.Errorf("page %d is row %d, want row %d", i, sink.indexes[i], idx)
		}
	}
}

func TestEmitSinkError(t *testing.T) {
	runner := newTestRunner(nil, nil)
	subjects := subjectsFor("9300000000017", "9300000000024")

	summary, err := runner.Run(context.Background(), subjects, testLayout(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sink := &collectSink{failAt: 1}
	if err := summary.Emit(sink); err == nil {
		t.Errorf("Emit() should propagate sink errors")
	}
}

func TestTimingsConcurrentSafe(t *testing.T) {
	timings := NewTimings()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			timings.ObserveBarcodeHTTP(time.Millisecond)
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		timings.ObserveRowRender(time.Millisecond)
	}
	<-done

	if timings.BarcodeHTTPCount != 100 || timings.RowRenderCount != 100 {
		t.Errorf("counts = %d/%d, want 100/100", timings.BarcodeHTTPCount, timings.RowRenderCount)
	}
}
