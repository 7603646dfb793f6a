package docpdf

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/caldero-lab/go-doc-pdf/ocr"
)

// Phase identifies what the pipeline is doing when progress is reported.
type Phase string

const (
	PhasePreparing      Phase = "preparing"
	PhaseOCRLoading     Phase = "ocr-loading"
	PhaseProcessingPage Phase = "processing-page"
	PhaseFinalizing     Phase = "finalizing"
)

// Progress is a point-in-time snapshot of a running document job.
// PageIndex counts committed pages, so PageIndex/TotalPages drives a
// linear progress bar. PageIndex == TotalPages is reported exactly once,
// after the output bytes exist.
type Progress struct {
	PageIndex  int
	TotalPages int
	Phase      Phase
}

// ProgressFunc receives progress snapshots. It is called synchronously
// from the pipeline, so it must return quickly.
type ProgressFunc func(Progress)

// pipelineState tracks the controller's position in the job lifecycle.
type pipelineState int

const (
	stateIdle pipelineState = iota
	stateRenderingLayout
	stateRasterizing
	stateFinalizing
	stateDone
	stateError
)

func (s pipelineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRenderingLayout:
		return "rendering-layout"
	case stateRasterizing:
		return "rasterizing"
	case stateFinalizing:
		return "finalizing"
	case stateDone:
		return "done"
	case stateError:
		return "error"
	}
	return "unknown"
}

// pipeline sequences one document job: layout, per-page capture,
// optional OCR, and PDF assembly. One pipeline run owns its render
// session and OCR session exclusively; both are released on every exit
// path.
type pipeline struct {
	renderer Renderer
	engine   ocr.Engine
	scale    float64
	log      *logrus.Logger

	state pipelineState
}

func (p *pipeline) transition(to pipelineState) {
	p.log.WithFields(logrus.Fields{"from": p.state.String(), "to": to.String()}).Debug("pipeline transition")
	p.state = to
}

// run converts one document to PDF bytes. Per-page failures are
// absorbed: a failed capture becomes a blank page and a failed
// recognition leaves that page image-only, so the returned PDF always
// has exactly as many pages as the rendered layout, in layout order.
// Absorbed failures are returned in pageErrs alongside the output.
func (p *pipeline) run(ctx context.Context, src []byte, pg *PageConfig, set Settings, progress ProgressFunc) (out []byte, pageErrs []error, err error) {
	emit := func(phase Phase, done, total int) {
		if progress != nil {
			progress(Progress{PageIndex: done, TotalPages: total, Phase: phase})
		}
	}
	fail := func(ferr error) ([]byte, []error, error) {
		p.transition(stateError)
		return nil, pageErrs, ferr
	}

	emit(PhasePreparing, 0, 0)
	p.transition(stateRenderingLayout)

	sess, err := p.renderer.Render(ctx, src, pg)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	total := sess.PageCount()
	if total <= 0 {
		return fail(&UnsupportedDocumentError{ContentType: "application/octet-stream", Err: fmt.Errorf("document has no renderable pages")})
	}

	var osess ocr.Session
	if set.OCR && p.engine != nil {
		emit(PhaseOCRLoading, 0, total)
		started, serr := p.engine.Start(ctx, set.Languages)
		if serr != nil {
			// Recoverable: the rest of the job continues image-only.
			uerr := &OcrUnavailableError{Err: serr}
			pageErrs = append(pageErrs, uerr)
			p.log.WithError(serr).Warn("ocr engine unavailable, continuing image-only")
		} else {
			osess = started
			defer osess.Close()
		}
	}

	doc := newPdfDocument(pg)
	p.transition(stateRasterizing)

	for i := 0; i < total; i++ {
		img, rerr := sess.Rasterize(ctx, i, p.scale)
		if rerr != nil {
			if ctx.Err() != nil {
				return fail(rerr)
			}
			// Degrade policy: a page that cannot be captured becomes a
			// blank page so page count and order stay intact.
			pageErrs = append(pageErrs, rerr)
			p.log.WithError(rerr).WithField("page", i).Warn("capture failed, substituting blank page")
			img = blankRaster(pg, p.scale)
		}

		var text *ocr.Result
		if osess != nil {
			res, oerr := osess.Recognize(ctx, img.Data)
			if oerr != nil {
				if ctx.Err() != nil {
					return fail(oerr)
				}
				pageErrs = append(pageErrs, fmt.Errorf("docpdf: ocr on page %d: %w", i, oerr))
				p.log.WithError(oerr).WithField("page", i).Warn("recognition failed, page stays image-only")
			} else {
				text = &res
			}
		}

		if aerr := doc.AddPage(img, text); aerr != nil {
			return fail(aerr)
		}
		// The last page's commit is folded into the finalizing events
		// below: N/N must appear exactly once, and only after Finalize
		// has produced output bytes.
		if committed := i + 1; committed < total {
			emit(PhaseProcessingPage, committed, total)
		}
	}

	if doc.PageCount() != total {
		return fail(fmt.Errorf("docpdf: assembled %d pages for a %d-page layout", doc.PageCount(), total))
	}

	p.transition(stateFinalizing)
	emit(PhaseFinalizing, total-1, total)

	out, err = doc.Finalize()
	if err != nil {
		return fail(err)
	}

	p.transition(stateDone)
	emit(PhaseFinalizing, total, total)
	return out, pageErrs, nil
}
