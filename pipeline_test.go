package docpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/caldero-lab/go-doc-pdf/ocr"
)

// stubSession serves deterministic rasters for a fixed page count and
// records lifecycle calls.
type stubSession struct {
	pg        *PageConfig
	pages     int
	failPages map[int]bool
	captured  []int
	closed    bool
}

func (s *stubSession) PageCount() int { return s.pages }

func (s *stubSession) Rasterize(ctx context.Context, i int, scale float64) (*RasterImage, error) {
	s.captured = append(s.captured, i)
	if s.failPages[i] {
		return nil, &RasterizationError{Page: i, Err: fmt.Errorf("stub capture failure")}
	}
	return blankRaster(s.pg, scale), nil
}

func (s *stubSession) Close() error {
	s.closed = true
	return nil
}

// stubRenderer hands out a single prepared session, or fails.
type stubRenderer struct {
	sess *stubSession
	err  error
}

func (r *stubRenderer) Render(ctx context.Context, src []byte, pg *PageConfig) (RenderSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sess.pg = pg
	return r.sess, nil
}

// countingEngine counts engine starts and serves per-page marker text
// so page order is observable in the output.
type countingEngine struct {
	starts    int
	startErr  error
	sessions  []*countingSession
	failPages map[int]bool
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Start(ctx context.Context, languages []string) (ocr.Session, error) {
	e.starts++
	if e.startErr != nil {
		return nil, e.startErr
	}
	s := &countingSession{failPages: e.failPages}
	e.sessions = append(e.sessions, s)
	return s, nil
}

type countingSession struct {
	calls     int
	closed    bool
	failPages map[int]bool
}

func (s *countingSession) Recognize(ctx context.Context, png []byte) (ocr.Result, error) {
	page := s.calls
	s.calls++
	if s.failPages[page] {
		return ocr.Result{}, fmt.Errorf("stub recognition failure")
	}
	return ocr.Result{Text: fmt.Sprintf("marker-page-%d", page)}, nil
}

func (s *countingSession) Close() error {
	s.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestPipeline(r Renderer, e ocr.Engine) *pipeline {
	return &pipeline{renderer: r, engine: e, scale: 1, log: quietLogger()}
}

func runTestPipeline(t *testing.T, r Renderer, e ocr.Engine, set Settings, progress ProgressFunc) ([]byte, []error, error) {
	t.Helper()
	pg := DefaultPageConfig()
	return newTestPipeline(r, e).run(context.Background(), nil, &pg, set, progress)
}

func TestPipeline_PageCountAndOrder(t *testing.T) {
	sess := &stubSession{pages: 3}
	engine := &countingEngine{}

	out, pageErrs, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: true}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pageErrs) != 0 {
		t.Fatalf("unexpected page errors: %v", pageErrs)
	}

	n, err := PDFPageCount(out)
	if err != nil {
		t.Fatalf("PDFPageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("page count = %d, want 3", n)
	}

	for i := 0; i < 3; i++ {
		text, err := PDFPageText(out, i)
		if err != nil {
			t.Fatalf("PDFPageText(%d): %v", i, err)
		}
		want := fmt.Sprintf("marker-page-%d", i)
		if !strings.Contains(text, want) {
			t.Errorf("page %d text %q does not contain %q", i, text, want)
		}
	}
}

func TestPipeline_RasterFailureDegradesToBlank(t *testing.T) {
	sess := &stubSession{pages: 3, failPages: map[int]bool{1: true}}

	out, pageErrs, err := runTestPipeline(t, &stubRenderer{sess: sess}, nil, Settings{}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	n, err := PDFPageCount(out)
	if err != nil {
		t.Fatalf("PDFPageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("page count = %d, want 3 (failed page must be blank, not missing)", n)
	}

	if len(pageErrs) != 1 {
		t.Fatalf("page errors = %d, want 1", len(pageErrs))
	}
	var rerr *RasterizationError
	if !errors.As(pageErrs[0], &rerr) {
		t.Fatalf("page error = %T, want *RasterizationError", pageErrs[0])
	}
	if rerr.Page != 1 {
		t.Errorf("failed page = %d, want 1", rerr.Page)
	}
	if !sess.closed {
		t.Error("render session not closed")
	}
}

func TestPipeline_OCRStartedOncePerJob(t *testing.T) {
	sess := &stubSession{pages: 5}
	engine := &countingEngine{}

	if _, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: true, Languages: []string{"eng"}}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	if engine.starts != 1 {
		t.Fatalf("engine started %d times for a 5-page job, want exactly 1", engine.starts)
	}
	if len(engine.sessions) != 1 || engine.sessions[0].calls != 5 {
		t.Fatalf("recognition calls = %+v, want one session with 5 calls", engine.sessions)
	}
	if !engine.sessions[0].closed {
		t.Error("ocr session not closed after job")
	}
}

func TestPipeline_OCRDisabledSkipsEngine(t *testing.T) {
	sess := &stubSession{pages: 2}
	engine := &countingEngine{}

	out, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: false}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if engine.starts != 0 {
		t.Fatalf("engine started %d times with OCR disabled, want 0", engine.starts)
	}
	text, err := PDFPageText(out, 0)
	if err != nil {
		t.Fatalf("PDFPageText: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Errorf("OCR-disabled page has text layer: %q", text)
	}
}

func TestPipeline_OCRStartFailureContinuesImageOnly(t *testing.T) {
	sess := &stubSession{pages: 3}
	engine := &countingEngine{startErr: fmt.Errorf("model missing")}

	out, pageErrs, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: true}, nil)
	if err != nil {
		t.Fatalf("ocr start failure must not fail the job, got: %v", err)
	}

	n, err := PDFPageCount(out)
	if err != nil {
		t.Fatalf("PDFPageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("page count = %d, want 3", n)
	}

	var uerr *OcrUnavailableError
	found := false
	for _, perr := range pageErrs {
		if errors.As(perr, &uerr) {
			found = true
		}
	}
	if !found {
		t.Fatalf("page errors %v missing *OcrUnavailableError", pageErrs)
	}
}

func TestPipeline_RecognitionFailureKeepsPageImageOnly(t *testing.T) {
	sess := &stubSession{pages: 3}
	engine := &countingEngine{failPages: map[int]bool{1: true}}

	out, pageErrs, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: true}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pageErrs) != 1 {
		t.Fatalf("page errors = %v, want exactly one", pageErrs)
	}

	for i, wantText := range []bool{true, false, true} {
		text, err := PDFPageText(out, i)
		if err != nil {
			t.Fatalf("PDFPageText(%d): %v", i, err)
		}
		got := strings.Contains(text, "marker-page-")
		if got != wantText {
			t.Errorf("page %d text presence = %v, want %v (text %q)", i, got, wantText, text)
		}
	}
}

func TestPipeline_ProgressMonotonicCompleteOnlyAtDone(t *testing.T) {
	sess := &stubSession{pages: 4}
	engine := &countingEngine{}

	var events []Progress
	_, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, engine, Settings{OCR: true}, func(p Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no progress reported")
	}

	prev := -1
	for i, ev := range events {
		if ev.PageIndex < prev {
			t.Fatalf("progress regressed at event %d: %+v after index %d", i, ev, prev)
		}
		prev = ev.PageIndex
		complete := ev.TotalPages > 0 && ev.PageIndex == ev.TotalPages
		if complete && i != len(events)-1 {
			t.Fatalf("100%% reported at event %d of %d: %+v", i, len(events), ev)
		}
	}

	last := events[len(events)-1]
	if last.PageIndex != 4 || last.TotalPages != 4 || last.Phase != PhaseFinalizing {
		t.Fatalf("final event = %+v, want {4 4 finalizing}", last)
	}
	if events[0].Phase != PhasePreparing {
		t.Errorf("first event phase = %s, want preparing", events[0].Phase)
	}
}

func TestPipeline_SinglePageProgress(t *testing.T) {
	sess := &stubSession{pages: 1}

	var events []Progress
	_, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, nil, Settings{}, func(p Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	last := events[len(events)-1]
	if last.PageIndex != 1 || last.TotalPages != 1 {
		t.Fatalf("final event = %+v, want {1 1 finalizing}", last)
	}
}

func TestPipeline_RendererErrorIsFatal(t *testing.T) {
	want := &UnsupportedDocumentError{ContentType: "application/octet-stream"}
	out, _, err := runTestPipeline(t, &stubRenderer{err: want}, nil, Settings{}, nil)
	if out != nil {
		t.Fatal("output produced despite renderer failure")
	}
	var uerr *UnsupportedDocumentError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want *UnsupportedDocumentError", err)
	}
}

func TestPipeline_ZeroPagesIsFatal(t *testing.T) {
	sess := &stubSession{pages: 0}
	_, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, nil, Settings{}, nil)
	var uerr *UnsupportedDocumentError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want *UnsupportedDocumentError", err)
	}
	if !sess.closed {
		t.Error("render session not closed on failure path")
	}
}

func TestPipeline_OCRDisabledOutputReproducible(t *testing.T) {
	run := func() []byte {
		sess := &stubSession{pages: 2}
		out, _, err := runTestPipeline(t, &stubRenderer{sess: sess}, nil, Settings{}, nil)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return out
	}
	if !bytes.Equal(run(), run()) {
		t.Fatal("two identical OCR-disabled runs produced different bytes")
	}
}
