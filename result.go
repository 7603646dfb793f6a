package docpdf

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Result holds a finalized PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Result is returned by every document conversion. It is safe to call
// its methods multiple times — the underlying data is never modified.
type Result struct {
	data []byte
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// MIMEType returns the content type of the output.
func (r *Result) MIMEType() string {
	return "application/pdf"
}

// Filename derives an output filename from the source filename by
// replacing its extension with ".pdf".
func (r *Result) Filename(source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		base = "output"
	}
	return base + ".pdf"
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
// This is useful for embedding in JSON payloads or uploading to services
// that accept base64-encoded content.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
