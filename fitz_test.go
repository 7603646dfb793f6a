package docpdf

import (
	"context"
	"errors"
	"image/color"
	"testing"
)

// assemblePDF builds a small n-page PDF through the assembler so the
// MuPDF backend has something real to re-rasterize.
func assemblePDF(t *testing.T, n int) []byte {
	t.Helper()
	doc := newPdfDocument(testGeometry())
	for i := 0; i < n; i++ {
		if err := doc.AddPage(makeRaster(t, color.RGBA{R: 200, G: uint8(50 * i), B: 80, A: 255}), nil); err != nil {
			t.Fatal(err)
		}
	}
	out, err := doc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFitzRenderer_PDFRoundTrip(t *testing.T) {
	src := assemblePDF(t, 2)

	sess, err := fitzRenderer{}.Render(context.Background(), src, testGeometry())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer sess.Close()

	if sess.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", sess.PageCount())
	}

	img, err := sess.Rasterize(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(img.Data) == 0 || img.Width <= 0 || img.Height <= 0 {
		t.Fatalf("degenerate raster: %dx%d, %d bytes", img.Width, img.Height, len(img.Data))
	}
}

func TestFitzRenderer_PageOutOfRange(t *testing.T) {
	src := assemblePDF(t, 1)

	sess, err := fitzRenderer{}.Render(context.Background(), src, testGeometry())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer sess.Close()

	_, err = sess.Rasterize(context.Background(), 5, 1)
	var rerr *RasterizationError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RasterizationError", err)
	}
	if rerr.Page != 5 {
		t.Errorf("error page = %d, want 5", rerr.Page)
	}
}

func TestFitzRenderer_GarbageInput(t *testing.T) {
	_, err := fitzRenderer{}.Render(context.Background(), []byte("definitely not a pdf"), testGeometry())
	var uerr *UnsupportedDocumentError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want *UnsupportedDocumentError", err)
	}
}

func TestFitzRenderer_UseAfterClose(t *testing.T) {
	src := assemblePDF(t, 1)

	sess, err := fitzRenderer{}.Render(context.Background(), src, testGeometry())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := sess.Rasterize(context.Background(), 0, 1); err == nil {
		t.Fatal("Rasterize after Close succeeded")
	}
}
