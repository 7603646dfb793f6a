package docpdf

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caldero-lab/go-doc-pdf/ocr"
)

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath   string
	autoDownload bool
	timeout      time.Duration
	noSandbox    bool
	headless     string
	settleWait   time.Duration
	scaleFactor  float64
	engine       ocr.Engine
	transcoder   Transcoder
	log          *logrus.Logger
}

func defaultConfig() converterConfig {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return converterConfig{
		timeout:     2 * time.Minute,
		headless:    "new",
		settleWait:  1200 * time.Millisecond,
		scaleFactor: 3,
		engine:      ocr.NewTesseract(),
		log:         log,
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithAutoDownload downloads a compatible Chromium binary into the
// user cache if none is found on the host.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

// WithTimeout sets the maximum duration for a single document
// conversion. Defaults to 2 minutes. A zero or negative value disables
// the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithSettleWait bounds the quiescence wait after document layout,
// during which embedded images and fonts are given time to load before
// the first capture. Defaults to 1.2 seconds. Rendering of embedded
// media is asynchronous and exposes no completion signal, so the wait
// is a bounded approximation: the renderer polls readiness and stops
// early when all sub-resources report complete.
func WithSettleWait(d time.Duration) Option {
	return func(c *converterConfig) {
		if d > 0 {
			c.settleWait = d
		}
	}
}

// WithScaleFactor sets the super-sampling factor for page capture.
// Defaults to 3 (three device pixels per layout pixel). Higher values
// sharpen the output at the cost of memory and OCR time.
func WithScaleFactor(scale float64) Option {
	return func(c *converterConfig) {
		if scale > 0 {
			c.scaleFactor = scale
		}
	}
}

// WithOCREngine replaces the default Tesseract OCR engine. Passing nil
// disables OCR regardless of per-job settings.
func WithOCREngine(engine ocr.Engine) Option {
	return func(c *converterConfig) {
		c.engine = engine
	}
}

// WithTranscoder sets the collaborator that handles video, audio, and
// image jobs. Without one, [Converter.ConvertJob] fails such jobs with
// [ErrNoTranscoder].
func WithTranscoder(t Transcoder) Option {
	return func(c *converterConfig) {
		c.transcoder = t
	}
}

// WithLogger routes pipeline diagnostics (per-page degradations, OCR
// fallbacks) to the given logger. By default they are discarded.
func WithLogger(log *logrus.Logger) Option {
	return func(c *converterConfig) {
		if log != nil {
			c.log = log
		}
	}
}
