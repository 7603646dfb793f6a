package docpdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
)

// RasterImage is one captured page as a fixed-resolution pixel buffer.
//
// It is owned transiently by the pipeline between rasterization and its
// consumption by OCR and PDF assembly, and is not reused across pages.
type RasterImage struct {
	// Data is the PNG-encoded pixel buffer.
	Data []byte
	// Width and Height are the raster dimensions in device pixels.
	Width  int
	Height int
	// Scale is the super-sampling factor relative to layout pixels.
	Scale float64
}

// RenderSession is a laid-out document at a fixed page geometry, owning
// the off-screen render surface for exactly one job.
//
// A session exposes an ordered sequence of page regions. Rasterize makes
// exactly one target page visible for capture, so calls must not overlap.
// Close releases the render surface and must be called on every exit
// path; consecutive jobs never see stale content.
type RenderSession interface {
	// PageCount returns the number of renderable pages.
	PageCount() int

	// Rasterize captures page i (0-based) as a raster image. scale
	// controls super-sampling sharpness and is a quality/performance
	// tradeoff only. Failures are reported as *RasterizationError and
	// are recoverable per page.
	Rasterize(ctx context.Context, i int, scale float64) (*RasterImage, error)

	// Close releases the session's rendering state. It is idempotent.
	Close() error
}

// Renderer lays out raw document bytes into a paginated RenderSession.
//
// Implementations return *UnsupportedDocumentError when the bytes cannot
// be parsed as a document they support.
type Renderer interface {
	Render(ctx context.Context, src []byte, pg *PageConfig) (RenderSession, error)
}

// blankRaster produces a white page raster matching the configured page
// geometry. It substitutes for pages whose capture failed, keeping the
// page count and order of the output intact.
func blankRaster(pg *PageConfig, scale float64) *RasterImage {
	if scale <= 0 {
		scale = 1
	}
	w, h := pg.pixelSize()
	pw, ph := int(float64(w)*scale), int(float64(h)*scale)

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			img.SetRGBA(x, y, white)
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)

	return &RasterImage{Data: buf.Bytes(), Width: pw, Height: ph, Scale: scale}
}

// encodeRaster PNG-encodes a decoded image into a RasterImage.
func encodeRaster(img image.Image, scale float64) (*RasterImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &RasterImage{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy(), Scale: scale}, nil
}
