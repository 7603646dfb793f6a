package docpdf

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies an input file for conversion dispatch.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindUnknown  Kind = "unknown"
)

// Status is the lifecycle state of a [Job].
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Settings are the document-conversion options carried by a job.
type Settings struct {
	// OCR enables the searchable text layer.
	OCR bool
	// Languages are OCR language hints (e.g. "eng"). Ignored unless OCR
	// is enabled.
	Languages []string
}

// Job identifies one user file moving through conversion. A job is
// created at file intake, mutated only by the converter while it runs,
// and owns its output exclusively once produced.
type Job struct {
	ID       string
	Name     string
	Source   []byte
	Kind     Kind
	Target   string
	Settings Settings
	Status   Status

	// Output is set when Status is StatusDone.
	Output *Result
	// Err is set when Status is StatusError.
	Err error
	// PageErrors records per-page degradations (blank-page substitutions,
	// skipped OCR) that were absorbed without failing the job.
	PageErrors []error
}

// NewJob creates an idle job for the named file, detecting its kind from
// the content and filename. Document jobs default to a PDF target.
func NewJob(name string, src []byte) *Job {
	kind := DetectKind(name, src)
	target := ""
	if kind == KindDocument {
		target = "pdf"
	}
	return &Job{
		ID:     uuid.NewString(),
		Name:   name,
		Source: src,
		Kind:   kind,
		Target: target,
		Status: StatusIdle,
	}
}

// OutputFilename derives the output filename for a completed document
// job (source basename with a ".pdf" extension).
func (j *Job) OutputFilename() string {
	base := filepath.Base(j.Name)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		base = j.ID
	}
	return base + ".pdf"
}

// documentExts are extensions accepted as documents when content
// sniffing is inconclusive (text/plain covers Markdown and bare HTML
// fragments).
var documentExts = map[string]bool{
	".html": true, ".htm": true,
	".md": true, ".markdown": true,
	".txt":  true,
	".pdf":  true,
	".epub": true,
	".xps":  true,
	".cbz":  true,
}

// DetectKind classifies file content, preferring content sniffing over
// the filename extension.
func DetectKind(name string, data []byte) Kind {
	ct := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(ct, "video/"):
		return KindVideo
	case strings.HasPrefix(ct, "audio/"):
		return KindAudio
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case ct == "application/pdf",
		strings.HasPrefix(ct, "text/html"),
		strings.HasPrefix(ct, "text/xml"):
		return KindDocument
	}

	ext := strings.ToLower(filepath.Ext(name))
	if documentExts[ext] {
		return KindDocument
	}
	// EPUB and friends are zip containers; sniffing reports them as
	// application/zip, so fall back to the extension check above before
	// looking at plain text.
	if strings.HasPrefix(ct, "text/plain") {
		return KindDocument
	}
	return KindUnknown
}
