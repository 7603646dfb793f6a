package docpdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/caldero-lab/go-doc-pdf/ocr"
)

// Metadata timestamps are pinned so that OCR-free conversions of the
// same input produce identical bytes run over run.
var fixedDocDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PdfDocument accumulates one raster image per document page into a
// multi-page PDF. Pages are appended in call order, which is preserved
// as the output page order. Finalize produces the output bytes exactly
// once; after that the document is immutable and AddPage fails with
// [ErrFinalized].
type PdfDocument struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	pageW     float64 // points
	pageH     float64 // points
	pages     int
	finalized bool
}

// newPdfDocument creates an empty accumulator at the given page geometry.
func newPdfDocument(pg *PageConfig) *PdfDocument {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(fixedDocDate)
	pdf.SetModificationDate(fixedDocDate)

	w, h := pg.pointSize()
	return &PdfDocument{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:     w,
		pageH:     h,
	}
}

// PageCount returns the number of pages appended so far.
func (d *PdfDocument) PageCount() int { return d.pages }

// AddPage appends one page image, scaled to fill the page exactly. When
// text is non-nil and non-empty it is additionally written as an
// invisible layer (fully transparent, small font, near the top of the
// page) so the page becomes text-searchable without any visual change.
// The layer is a best-effort searchability aid, not a positional
// reconstruction of the original text.
func (d *PdfDocument) AddPage(img *RasterImage, text *ocr.Result) error {
	if d.finalized {
		return ErrFinalized
	}
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("docpdf: adding page %d: empty raster", d.pages)
	}

	d.pdf.AddPageFormat("P", fpdf.SizeType{Wd: d.pageW, Ht: d.pageH})

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	name := fmt.Sprintf("raster-%d", d.pages)
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	d.pdf.ImageOptions(name, 0, 0, d.pageW, d.pageH, false, opts, 0, "")

	if text != nil {
		if t := strings.TrimSpace(text.Text); t != "" {
			d.writeTextLayer(t)
		}
	}

	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("docpdf: adding page %d: %w", d.pages, err)
	}
	d.pages++
	return nil
}

// writeTextLayer draws recognized text with zero alpha so it is
// selectable and searchable but never visible or printed.
func (d *PdfDocument) writeTextLayer(text string) {
	d.pdf.SetFont("Helvetica", "", 6)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetAlpha(0, "Normal")
	d.pdf.SetXY(4, 8)
	d.pdf.MultiCell(d.pageW-8, 7, d.translate(text), "", "L", false)
	d.pdf.SetAlpha(1, "Normal")
	d.pdf.SetTextColor(0, 0, 0)
}

// Finalize encodes the accumulated pages into the output PDF bytes.
// It may be called exactly once; further calls, like further AddPage
// calls, fail with [ErrFinalized].
func (d *PdfDocument) Finalize() ([]byte, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	d.finalized = true

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("docpdf: encoding pdf: %w", err)
	}
	return buf.Bytes(), nil
}
