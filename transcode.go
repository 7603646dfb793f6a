package docpdf

import "context"

// Transcoder converts non-document media (video, audio, image) between
// formats using an external codec engine. It is a collaborator of the
// converter, not part of the document pipeline: the library routes
// non-document jobs to it and passes its output through untouched.
type Transcoder interface {
	Transcode(ctx context.Context, src []byte, targetFormat string, options map[string]string) ([]byte, error)
}

// Packager combines multiple completed job outputs into a single
// archive blob. Packaging is outside the conversion core; the interface
// exists so callers can plug in their own archiver.
type Packager interface {
	Package(ctx context.Context, outputs map[string][]byte) ([]byte, error)
}
