package docpdf

import (
	"bytes"
	"fmt"

	ltpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ValidateOutput checks that data is a structurally valid PDF.
func ValidateOutput(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("docpdf: invalid output: %w", err)
	}
	return nil
}

// PDFPageCount returns the number of pages in a PDF.
func PDFPageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("docpdf: counting pages: %w", err)
	}
	return n, nil
}

// PDFPageText extracts the text content of page i (0-based). For PDFs
// produced by this library the only text is the invisible OCR layer, so
// an empty string means the page is image-only.
func PDFPageText(data []byte, i int) (string, error) {
	r, err := ltpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docpdf: opening pdf: %w", err)
	}
	if i < 0 || i >= r.NumPage() {
		return "", fmt.Errorf("docpdf: page %d out of range [0,%d)", i, r.NumPage())
	}
	p := r.Page(i + 1)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("docpdf: extracting page %d text: %w", i, err)
	}
	return text, nil
}
