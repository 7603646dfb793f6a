package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is an [Engine] backed by the Tesseract OCR library via
// gosseract. It requires libtesseract and the trained data for the
// requested languages to be installed on the host.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract-backed OCR engine.
func NewTesseract() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Start creates one gosseract client configured for the given languages.
// The client is reused for every page of the job and released by Close.
func (t *Tesseract) Start(ctx context.Context, languages []string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := t.clientFactory()
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages %v: %w", languages, err)
		}
	}
	return &tesseractSession{client: c}, nil
}

type tesseractSession struct {
	mu     sync.Mutex
	client *gosseract.Client
	closed bool
}

func (s *tesseractSession) Recognize(ctx context.Context, png []byte) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, fmt.Errorf("tesseract: session closed")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.client.SetImageFromBytes(png); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	text, err := s.client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}
	return Result{Text: strings.TrimSpace(text)}, nil
}

func (s *tesseractSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
