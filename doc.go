// Package docpdf converts documents into searchable PDFs on the client
// side, with no server round-trip: the document is laid out off-screen,
// each page is captured as a high-resolution raster, recognized text is
// optionally recovered via OCR, and the pages are assembled into a
// multi-page PDF whose invisible text layer makes it full-text
// searchable without changing its appearance.
//
// # Converting documents
//
// For one-off conversions use the package-level helpers:
//
//	res, err := docpdf.ConvertDocument(ctx, htmlBytes, nil)
//
// For repeated conversions create a [Converter], which reuses the
// headless browser process:
//
//	c, err := docpdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.ConvertDocument(ctx, src, &docpdf.Settings{
//	    OCR:       true,
//	    Languages: []string{"eng"},
//	}, nil, nil)
//
// HTML and Markdown inputs are laid out by headless Chrome at a fixed
// page geometry; PDF, EPUB, XPS, and CBZ inputs are re-rasterized page
// by page through MuPDF. Use [PageConfig] to control paper size,
// orientation, and margins:
//
//	pg := &docpdf.PageConfig{Size: docpdf.Letter, Orientation: docpdf.Landscape}
//	res, err := c.ConvertDocument(ctx, src, nil, pg, nil)
//
// Progress is reported per committed page through a callback:
//
//	res, err := c.ConvertDocument(ctx, src, set, nil, func(p docpdf.Progress) {
//	    fmt.Printf("%s %d/%d\n", p.Phase, p.PageIndex, p.TotalPages)
//	})
//
// A [Result] gives flexible access to the generated PDF bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := docpdf.NewConverter(docpdf.WithAutoDownload())
//
// # Failure behavior
//
// A page that fails to capture degrades to a blank page, and a page
// whose recognition fails stays image-only; neither aborts the job, so
// the output always has exactly one PDF page per rendered page, in
// order. An input that cannot be parsed at all fails the job with
// [UnsupportedDocumentError].
//
// # Other file kinds
//
// [Converter.ConvertJob] dispatches intake files by detected kind.
// Video, audio, and image jobs are delegated to a [Transcoder]
// collaborator supplied via [WithTranscoder]; only the document path is
// implemented by this package.
package docpdf
