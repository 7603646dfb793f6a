package docpdf

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// fitzRenderer rasterizes already-paginated formats (PDF, EPUB, XPS,
// CBZ) through MuPDF. Page boundaries come from the source itself, so
// there is no settle wait and no reflow; the configured page geometry
// only sets the output raster density.
type fitzRenderer struct{}

func (fitzRenderer) Render(ctx context.Context, src []byte, pg *PageConfig) (RenderSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(src)
	if err != nil {
		return nil, &UnsupportedDocumentError{ContentType: "application/octet-stream", Err: err}
	}
	return &fitzSession{doc: doc, pages: doc.NumPage(), dpi: pg.resolved().DPI}, nil
}

type fitzSession struct {
	mu     sync.Mutex
	doc    *fitz.Document
	pages  int
	dpi    float64
	closed bool
}

func (s *fitzSession) PageCount() int { return s.pages }

func (s *fitzSession) Rasterize(ctx context.Context, i int, scale float64) (*RasterImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &RasterizationError{Page: i, Err: ErrClosed}
	}
	if i < 0 || i >= s.pages {
		return nil, &RasterizationError{Page: i, Err: fmt.Errorf("page out of range [0,%d)", s.pages)}
	}
	if err := ctx.Err(); err != nil {
		return nil, &RasterizationError{Page: i, Err: err}
	}
	if scale <= 0 {
		scale = 1
	}

	img, err := s.doc.ImageDPI(i, s.dpi*scale)
	if err != nil {
		return nil, &RasterizationError{Page: i, Err: err}
	}
	raster, err := encodeRaster(img, scale)
	if err != nil {
		return nil, &RasterizationError{Page: i, Err: err}
	}
	return raster, nil
}

func (s *fitzSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.doc.Close()
}
