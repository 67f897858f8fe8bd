// Package processor drives a single OCR request from language parsing through
// detection, and shapes the engine's output into the JSON result record.
//
// A Processor never returns an error: every failure, including a panic inside
// an engine, becomes a failure-shaped Result whose Error field carries the
// message. Human-readable progress lines are written to the configured
// progress writer as the request proceeds; they are diagnostics only.
package processor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"ocrtool/internal/logger"
	"ocrtool/internal/ocr"
)

// Request is one OCR invocation.
type Request struct {
	// ImagePath is the filesystem path of the image to read.
	ImagePath string

	// Languages are the requested language codes, in order.
	Languages []string
}

// NewRequest builds a Request from the raw command-line values, splitting
// the comma-separated language list.
func NewRequest(imagePath, languages string) (Request, error) {
	codes, err := ocr.ParseLanguages(languages)
	if err != nil {
		return Request{ImagePath: imagePath}, err
	}
	return Request{ImagePath: imagePath, Languages: codes}, nil
}

// Config controls optional Processor behavior.
type Config struct {
	// Progress receives the human-readable progress lines. Nil discards them.
	Progress io.Writer

	// Normalize applies Unicode NFC normalization to recognized text.
	Normalize bool
}

// Processor runs OCR requests against engines created by its Opener.
// A new engine is opened and closed for every request.
type Processor struct {
	open      ocr.Opener
	progress  io.Writer
	normalize bool
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a Processor that opens engines with open.
func New(open ocr.Opener, cfg Config) *Processor {
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &Processor{
		open:      open,
		progress:  progress,
		normalize: cfg.Normalize,
		log:       logger.WithComponent("processor"),
		now:       time.Now,
	}
}

// Process runs req and returns its Result. It always returns a non-nil Result.
func (p *Processor) Process(ctx context.Context, req Request) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			err := ocr.NewError("Process", ocr.KindUnknown, fmt.Errorf("panic: %v", r), "")
			result = p.fail(req, err)
		}
	}()

	p.printf("Starting OCR processing for: %s\n", req.ImagePath)
	start := p.now()

	if len(req.Languages) == 0 {
		return p.fail(req, ocr.NewError("Process", ocr.KindArgument, ocr.ErrNoLanguages, ""))
	}

	p.printf("Initializing OCR engine with languages: [%s]\n", strings.Join(req.Languages, ", "))
	engine, err := p.open(ctx, ocr.Options{Languages: req.Languages, UseGPU: false})
	if err != nil {
		return p.fail(req, ocr.WrapError("Process", ocr.KindEngineInit, err, ""))
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			p.log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()
	p.printf("OCR engine initialized successfully\n")

	p.printf("Processing image...\n")
	bounds, err := ocr.CheckImage(req.ImagePath)
	if err != nil {
		return p.fail(req, err)
	}
	p.log.Debug().
		Str("file", req.ImagePath).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("Image decoded")

	detections, err := engine.Detect(ctx, req.ImagePath)
	if err != nil {
		return p.fail(req, ocr.WrapError("Process", ocr.KindDetection, err, ""))
	}
	elapsed := p.now().Sub(start)
	p.printf("OCR processing completed. Found %d text regions\n", len(detections))

	result = &Result{
		Texts:       make([]string, 0, len(detections)),
		Confidences: make([]float64, 0, len(detections)),
		Detections:  len(detections),
	}
	for i, d := range detections {
		p.printf("Text %d: '%s' (confidence: %.3f)\n", i+1, d.Text, d.Confidence)

		text := d.Text
		if p.normalize {
			text = norm.NFC.String(text)
		}
		result.Texts = append(result.Texts, strings.TrimSpace(text))
		result.Confidences = append(result.Confidences, round(clamp01(d.Confidence), 3))
	}
	result.Text = strings.Join(result.Texts, " ")
	result.ProcessingTime = round(max(elapsed.Seconds(), 0), 2)

	p.printf("Total processing time: %.2fs\n", result.ProcessingTime)

	p.log.Info().
		Str("file", req.ImagePath).
		Int("detections", result.Detections).
		Dur("duration", elapsed).
		Msg("OCR processing completed successfully")

	return result
}

// Run parses the raw command-line values and processes the resulting request.
// A malformed language list yields a failure Result without opening an engine.
func (p *Processor) Run(ctx context.Context, imagePath, languages string) *Result {
	req, err := NewRequest(imagePath, languages)
	if err != nil {
		p.printf("Starting OCR processing for: %s\n", imagePath)
		return p.fail(req, err)
	}
	return p.Process(ctx, req)
}

func (p *Processor) fail(req Request, err error) *Result {
	p.printf("Error during OCR processing: %s\n", err.Error())
	p.log.Error().
		Err(err).
		Str("file", req.ImagePath).
		Str("kind", ocr.KindOf(err).String()).
		Msg("OCR processing failed")
	return failure(err)
}

func (p *Processor) printf(format string, args ...any) {
	fmt.Fprintf(p.progress, format, args...)
}
