package docpdf

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
)

// Converter converts user files: documents become searchable PDFs
// through the rasterization pipeline, and other kinds are delegated to
// an optional [Transcoder] collaborator.
//
// A Converter manages a headless browser instance that is reused across
// conversions. Document jobs are serialized: rasterization and OCR are
// heavy, stateful operations, so one job runs to completion (or failure)
// before the next begins.
//
// Call [Converter.Close] when the Converter is no longer needed to
// release browser resources.
type Converter struct {
	cfg           converterConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// jobMu serializes document jobs; the render surface and the OCR
	// engine are exclusively owned by the running job.
	jobMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewConverter creates a Converter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Converter.Close] when finished.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("docpdf: starting browser: %w", err)
	}

	return &Converter{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Converter, including the
// browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// ConvertDocument converts document bytes into a searchable PDF.
// Supported inputs: HTML and Markdown (laid out by headless Chrome at
// the page geometry) and already-paginated formats handled by MuPDF
// (PDF, EPUB, XPS, CBZ), which are re-rasterized page by page.
//
// set controls OCR; nil disables it. pg fixes the page geometry; nil
// means A4 portrait. progress may be nil.
func (c *Converter) ConvertDocument(ctx context.Context, src []byte, set *Settings, pg *PageConfig, progress ProgressFunc) (*Result, error) {
	res, _, err := c.convertDocument(ctx, src, set, pg, progress)
	return res, err
}

// convertDocument additionally returns the absorbed per-page
// degradations so [Converter.ConvertJob] can record them on the job.
func (c *Converter) convertDocument(ctx context.Context, src []byte, set *Settings, pg *PageConfig, progress ProgressFunc) (*Result, []error, error) {
	if err := c.checkClosed(); err != nil {
		return nil, nil, err
	}
	if len(src) == 0 {
		return nil, nil, &UnsupportedDocumentError{ContentType: "application/octet-stream", Err: fmt.Errorf("empty input")}
	}

	renderer, src, err := c.routeDocument(src)
	if err != nil {
		return nil, nil, err
	}

	settings := Settings{}
	if set != nil {
		settings = *set
	}
	resolved := pg.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	c.jobMu.Lock()
	defer c.jobMu.Unlock()

	p := &pipeline{
		renderer: renderer,
		engine:   c.cfg.engine,
		scale:    c.cfg.scaleFactor,
		log:      c.cfg.log,
	}
	out, pageErrs, err := p.run(ctx, src, &resolved, settings, progress)
	if err != nil {
		return nil, pageErrs, err
	}
	for _, perr := range pageErrs {
		c.cfg.log.WithError(perr).Info("page-level degradation")
	}
	return &Result{data: out}, pageErrs, nil
}

// ConvertDocumentFile converts a local document file to a searchable PDF.
func (c *Converter) ConvertDocumentFile(ctx context.Context, path string, set *Settings, pg *PageConfig, progress ProgressFunc) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docpdf: %w", err)
	}
	return c.ConvertDocument(ctx, src, set, pg, progress)
}

// ConvertJob runs one intake job to completion, mutating its status.
// Document jobs go through the PDF pipeline; video, audio, and image
// jobs are delegated to the configured [Transcoder].
func (c *Converter) ConvertJob(ctx context.Context, job *Job, progress ProgressFunc) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	job.Status = StatusProcessing

	switch job.Kind {
	case KindDocument:
		res, pageErrs, err := c.convertDocument(ctx, job.Source, &job.Settings, nil, progress)
		job.PageErrors = pageErrs
		if err != nil {
			job.Status = StatusError
			job.Err = err
			return err
		}
		job.Output = res
		job.Status = StatusDone
		return nil

	case KindVideo, KindAudio, KindImage:
		if c.cfg.transcoder == nil {
			job.Status = StatusError
			job.Err = ErrNoTranscoder
			return ErrNoTranscoder
		}
		out, err := c.cfg.transcoder.Transcode(ctx, job.Source, job.Target, nil)
		if err != nil {
			job.Status = StatusError
			job.Err = err
			return err
		}
		job.Output = &Result{data: out}
		job.Status = StatusDone
		return nil

	default:
		err := &UnsupportedDocumentError{ContentType: http.DetectContentType(job.Source)}
		job.Status = StatusError
		job.Err = err
		return err
	}
}

// routeDocument picks the renderer backend for the input bytes and
// returns the (possibly preprocessed) source to render.
func (c *Converter) routeDocument(src []byte) (Renderer, []byte, error) {
	ct := http.DetectContentType(src)
	base := ct
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	switch {
	case base == "application/pdf", base == "application/zip", base == "application/x-zip-compressed":
		// EPUB, XPS, and CBZ are zip containers; MuPDF sorts out whether
		// the payload is actually one of its formats.
		return fitzRenderer{}, src, nil

	case base == "text/html", base == "text/xml":
		return c.chromeRenderer(), src, nil

	case looksLikeMarkdown(base):
		html, err := markdownToHTML(src)
		if err != nil {
			return nil, nil, err
		}
		return c.chromeRenderer(), html, nil

	default:
		return nil, nil, &UnsupportedDocumentError{ContentType: ct}
	}
}

func (c *Converter) chromeRenderer() *chromeRenderer {
	return &chromeRenderer{
		browserCtx: c.browserCtx,
		settleWait: c.cfg.settleWait,
		log:        c.cfg.log,
	}
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// ConvertDocument converts document bytes to a searchable PDF using a
// temporary [Converter]. This is convenient for one-off conversions.
// For repeated use, create a [Converter] with [NewConverter] to reuse
// the browser instance.
func ConvertDocument(ctx context.Context, src []byte, set *Settings, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertDocument(ctx, src, set, nil, nil)
}

// ConvertDocumentFile converts a local document file to a searchable
// PDF using a temporary [Converter].
func ConvertDocumentFile(ctx context.Context, path string, set *Settings, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertDocumentFile(ctx, path, set, nil, nil)
}
