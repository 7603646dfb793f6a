// Package ocr defines a small abstraction for plugging text-recognition
// engines into the document conversion pipeline.
//
// Engine start-up is expensive (it loads a recognition model), so the
// contract separates the engine from its per-job [Session]: a session is
// started at most once per document, reused across all of its pages, and
// closed on every exit path. Language hints are static session
// configuration, never per-call.
package ocr

import "context"

// Result is the recognized text for a single page image. An empty Text
// is a valid result, not an error: it means the engine found nothing
// legible on the page.
type Result struct {
	Text string
}

// Session is one started engine instance, scoped to a single document
// job. Recognize must not mutate the input image. Implementations are
// not required to be safe for concurrent use; the pipeline serializes
// calls page by page.
type Session interface {
	// Recognize extracts text from a PNG-encoded page image.
	Recognize(ctx context.Context, png []byte) (Result, error)

	// Close releases the engine instance's resources. It is idempotent.
	Close() error
}

// Engine creates recognition sessions. Start loads the recognition model
// for the given language hints (e.g. "eng", "deu"); an empty slice lets
// the engine pick its default.
type Engine interface {
	Name() string
	Start(ctx context.Context, languages []string) (Session, error)
}
