package docpdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// chromeRenderer lays out HTML documents in a dedicated headless-Chrome
// tab. Each Render call opens a fresh tab, so consecutive jobs never see
// each other's content; the tab is the job's off-screen render surface
// and lives until the session is closed.
type chromeRenderer struct {
	browserCtx context.Context
	settleWait time.Duration
	log        *logrus.Logger
}

// paginateScript reflows the document into a single-page clip window:
// the body is fixed to exactly one page and everything else is moved
// into a wrapper that slides vertically behind it. Showing page i is a
// translation of the wrapper; all sibling pages stay outside the clip
// bounds, so a capture can never include adjacent page content.
const paginateScript = `(() => {
  const w = %d, h = %d;
  const de = document.documentElement;
  de.style.margin = '0';
  de.style.padding = '0';
  de.style.background = '#ffffff';
  const body = document.body;
  const wrap = document.createElement('div');
  while (body.firstChild) { wrap.appendChild(body.firstChild); }
  body.appendChild(wrap);
  body.style.margin = '0';
  body.style.padding = '0';
  body.style.background = '#ffffff';
  body.style.width = w + 'px';
  body.style.height = h + 'px';
  body.style.overflow = 'hidden';
  wrap.style.boxSizing = 'border-box';
  wrap.style.width = w + 'px';
  wrap.style.paddingTop = '%dpx';
  wrap.style.paddingRight = '%dpx';
  wrap.style.paddingLeft = '%dpx';
  wrap.style.background = '#ffffff';
  window.__docpdf = {
    pageCount: () => Math.max(1, Math.ceil(Math.max(wrap.scrollHeight, wrap.offsetHeight) / h)),
    show: (i) => { wrap.style.transform = 'translateY(' + (-i * h) + 'px)'; return true; },
    reset: () => { wrap.style.transform = 'none'; return true; },
    settled: () => {
      if (document.fonts && document.fonts.status !== 'loaded') { return false; }
      const imgs = document.images;
      for (let i = 0; i < imgs.length; i++) {
        if (!imgs[i].complete) { return false; }
      }
      return true;
    },
  };
  return window.__docpdf.pageCount();
})()`

// Render writes the HTML to a temporary file, lays it out at the page
// geometry in a new tab, waits (bounded) for embedded sub-resources to
// settle, and returns the paginated session.
func (r *chromeRenderer) Render(ctx context.Context, src []byte, pg *PageConfig) (RenderSession, error) {
	f, err := os.CreateTemp("", "docpdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("docpdf: creating temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(src); err != nil {
		f.Close()
		os.Remove(name)
		return nil, fmt.Errorf("docpdf: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("docpdf: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("docpdf: resolving path: %w", err)
	}

	pageW, pageH := pg.pixelSize()
	mTop, mRight, _, mLeft := pg.marginPixels()

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	sess := &chromeSession{
		tabCtx:    tabCtx,
		tabCancel: tabCancel,
		tempFile:  name,
		pageW:     pageW,
		pageH:     pageH,
	}

	var pages int
	err = sess.run(ctx,
		chromedp.EmulateViewport(int64(pageW), int64(pageH)),
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(paginateScript, pageW, pageH, mTop, mRight, mLeft), &pages),
	)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("docpdf: laying out document: %w", err)
	}

	r.waitSettled(ctx, sess)

	// Sub-resources that finished loading during the settle wait can
	// change the flowed height, so the page count is re-measured.
	if err := sess.run(ctx, chromedp.Evaluate("window.__docpdf.pageCount()", &pages)); err != nil {
		sess.Close()
		return nil, fmt.Errorf("docpdf: counting pages: %w", err)
	}
	sess.pages = pages
	return sess, nil
}

// waitSettled polls sub-resource readiness until everything reports
// complete or the bounded settle wait elapses. Image and font loading is
// asynchronous with no reliable completion event across documents; the
// fixed upper bound is a documented approximation, not a guarantee.
func (r *chromeRenderer) waitSettled(ctx context.Context, sess *chromeSession) {
	deadline := time.Now().Add(r.settleWait)
	for time.Now().Before(deadline) {
		var done bool
		if err := sess.run(ctx, chromedp.Evaluate("window.__docpdf.settled()", &done)); err != nil {
			return
		}
		if done {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	r.log.Debug("settle wait elapsed with sub-resources still loading")
}

// chromeSession is one laid-out document in one tab.
type chromeSession struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	tempFile  string
	pageW     int
	pageH     int
	pages     int

	mu     sync.Mutex
	closed bool
}

func (s *chromeSession) PageCount() int { return s.pages }

// run executes tab actions while honoring the job context: the tab is
// torn down as soon as ctx is cancelled, so a hung navigation or capture
// cannot outlive the caller's deadline. Once cancelled, the cancellation
// error wins over whatever the aborted action reports.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, s.tabCancel)
	defer stop()

	err := chromedp.Run(s.tabCtx, actions...)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

// Rasterize slides page i into the clip window and captures it at the
// requested super-sampling scale.
func (s *chromeSession) Rasterize(ctx context.Context, i int, scale float64) (*RasterImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &RasterizationError{Page: i, Err: ErrClosed}
	}
	if i < 0 || i >= s.pages {
		return nil, &RasterizationError{Page: i, Err: fmt.Errorf("page out of range [0,%d)", s.pages)}
	}
	if scale <= 0 {
		scale = 1
	}

	var shown bool
	var buf []byte
	err := s.run(ctx,
		chromedp.Evaluate(fmt.Sprintf("window.__docpdf.show(%d)", i), &shown),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				WithCaptureBeyondViewport(true).
				WithClip(&page.Viewport{
					X:      0,
					Y:      0,
					Width:  float64(s.pageW),
					Height: float64(s.pageH),
					Scale:  scale,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RasterizationError{Page: i, Err: err}
	}
	if len(buf) == 0 {
		return nil, &RasterizationError{Page: i, Err: fmt.Errorf("empty capture")}
	}
	return &RasterImage{
		Data:   buf,
		Width:  int(float64(s.pageW) * scale),
		Height: int(float64(s.pageH) * scale),
		Scale:  scale,
	}, nil
}

// Close restores the render surface and releases the tab and the
// temporary document file. It is idempotent.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	// Best effort: clear the translation before the tab goes away so a
	// devtools session attached for debugging sees pristine state.
	var ok bool
	_ = chromedp.Run(s.tabCtx, chromedp.Evaluate("window.__docpdf.reset()", &ok))

	s.tabCancel()
	if s.tempFile != "" {
		os.Remove(s.tempFile)
	}
	return nil
}
