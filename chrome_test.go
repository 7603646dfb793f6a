package docpdf

import (
	"context"
	"errors"
	"testing"
)

// The session helpers must observe the caller's context, not just the
// tab's: a job deadline has to stop a hung tab action.

func TestChromeSessionRun_CanceledContext(t *testing.T) {
	tabCtx, tabCancel := context.WithCancel(context.Background())
	defer tabCancel()
	s := &chromeSession{tabCtx: tabCtx, tabCancel: tabCancel}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run = %v, want context.Canceled", err)
	}
}

func TestChromeSession_RasterizeCanceledContext(t *testing.T) {
	tabCtx, tabCancel := context.WithCancel(context.Background())
	defer tabCancel()
	s := &chromeSession{tabCtx: tabCtx, tabCancel: tabCancel, pages: 1, pageW: 100, pageH: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Rasterize(ctx, 0, 1)
	var rerr *RasterizationError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RasterizationError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled underneath", err)
	}
}
