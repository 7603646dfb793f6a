package docpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("docpdf: converter is closed")

	// ErrFinalized is returned when a [PdfDocument] is used after
	// [PdfDocument.Finalize] has been called. It always indicates a bug
	// in the caller, never a recoverable input condition.
	ErrFinalized = errors.New("docpdf: document already finalized")

	// ErrNoTranscoder is returned by [Converter.ConvertJob] for video,
	// audio, and image jobs when no [Transcoder] has been configured.
	ErrNoTranscoder = errors.New("docpdf: no transcoder configured")
)

// UnsupportedDocumentError indicates that the input bytes could not be
// parsed as any supported document format. It is fatal for the job.
type UnsupportedDocumentError struct {
	// ContentType is the sniffed content type of the rejected input.
	ContentType string
	Err         error
}

func (e *UnsupportedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docpdf: unsupported document (%s): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("docpdf: unsupported document (%s)", e.ContentType)
}

func (e *UnsupportedDocumentError) Unwrap() error { return e.Err }

// RasterizationError indicates that a single page failed to capture.
// The pipeline recovers from it by substituting a blank page, so a job
// that hits one still completes with the full page count.
type RasterizationError struct {
	// Page is the zero-based index of the page that failed.
	Page int
	Err  error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("docpdf: rasterizing page %d: %v", e.Page, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// OcrUnavailableError indicates that the OCR engine failed to start.
// The pipeline recovers from it by continuing image-only for the rest
// of the job.
type OcrUnavailableError struct {
	Err error
}

func (e *OcrUnavailableError) Error() string {
	return fmt.Sprintf("docpdf: ocr engine unavailable: %v", e.Err)
}

func (e *OcrUnavailableError) Unwrap() error { return e.Err }
