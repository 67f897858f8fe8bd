// Package ocr provides pluggable OCR (Optical Character Recognition) engines
// that detect text regions in a single image.
//
// Every engine returns an ordered list of detections, each carrying the
// region's bounding polygon, its recognized text and a confidence score in
// [0, 1]. The order is the engine's reading order.
//
// Supported Engines:
//   - tesseract: local Tesseract via gosseract (requires cgo and traineddata)
//   - vision: Google Cloud Vision document text detection
//   - documentai: Google Cloud Document AI OCR processor
//
// Cloud Engine Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID
//     (documentai only)
package ocr

import (
	"context"
	"fmt"
	"image"
	"sort"
)

// Engine names accepted by Open.
const (
	EngineTesseract  = "tesseract"
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

// Engine defines the interface for a configured OCR engine instance.
// An Engine is created for one invocation and must be closed afterwards.
type Engine interface {
	// Detect recognizes text in the image at imagePath.
	// Returns detections in the engine's reading order.
	Detect(ctx context.Context, imagePath string) ([]Detection, error)

	// Close releases the engine's native or network resources.
	Close() error
}

// Detection is one located piece of text.
type Detection struct {
	// Box is the region's bounding polygon in image pixel coordinates.
	Box Box `json:"box"`

	// Text is the recognized text as returned by the engine, untrimmed.
	Text string `json:"text"`

	// Confidence is the engine's estimate (0.0 to 1.0) that Text is correct.
	Confidence float64 `json:"confidence"`
}

// Box is a bounding polygon, usually the four corners of a rectangle in
// clockwise order starting top-left.
type Box []image.Point

// RectBox converts a rectangle into its four-corner polygon.
func RectBox(r image.Rectangle) Box {
	return Box{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// Options configures an engine instance.
type Options struct {
	// Languages are the requested language codes, in priority order.
	Languages []string

	// UseGPU requests GPU execution. None of the bundled engines support it.
	UseGPU bool
}

// Config holds engine-specific settings that do not vary per request.
type Config struct {
	// TessdataPrefix is the directory holding Tesseract traineddata files.
	// Empty uses Tesseract's compiled-in default or TESSDATA_PREFIX.
	TessdataPrefix string

	// ProjectID is the Google Cloud project used by the documentai engine.
	ProjectID string

	// Location is the Document AI processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the Document AI OCR processor ID.
	ProcessorID string

	// CredentialsJSON is an inline service account key.
	CredentialsJSON string

	// CredentialsFile is a path to a service account key file.
	CredentialsFile string
}

// Opener constructs an engine for one request.
type Opener func(ctx context.Context, opts Options) (Engine, error)

type factory func(ctx context.Context, cfg Config, opts Options) (Engine, error)

var factories = map[string]factory{
	EngineTesseract:  newTesseractEngine,
	EngineVision:     newVisionEngine,
	EngineDocumentAI: newDocumentAIEngine,
}

// Engines returns the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEngine reports whether name is a registered engine.
func IsEngine(name string) bool {
	_, ok := factories[name]
	return ok
}

// Open creates the named engine configured for opts.
func Open(ctx context.Context, name string, cfg Config, opts Options) (Engine, error) {
	const op = "Open"

	create, ok := factories[name]
	if !ok {
		return nil, NewError(op, KindEngineInit, ErrUnknownEngine, fmt.Sprintf("engine: %q", name))
	}
	if len(opts.Languages) == 0 {
		return nil, NewError(op, KindArgument, ErrNoLanguages, "")
	}
	if opts.UseGPU {
		return nil, NewError(op, KindEngineInit, ErrGPUUnsupported, fmt.Sprintf("engine: %s", name))
	}

	engine, err := create(ctx, cfg, opts)
	if err != nil {
		return nil, WrapError(op, KindEngineInit, err, fmt.Sprintf("failed to initialize %s engine", name))
	}
	return engine, nil
}

// AvailableLanguages lists the language data the named engine can load.
// Only the tesseract engine can enumerate its languages offline.
func AvailableLanguages(name string, cfg Config) ([]string, error) {
	const op = "AvailableLanguages"

	switch name {
	case EngineTesseract:
		langs, err := installedTesseractLanguages(cfg.TessdataPrefix)
		if err != nil {
			return nil, WrapError(op, KindEngineInit, err, "failed to list tesseract languages")
		}
		return langs, nil
	case EngineVision, EngineDocumentAI:
		return nil, NewError(op, KindEngineInit, ErrInvalidConfiguration,
			fmt.Sprintf("%s accepts any BCP-47 language hint; listing is not supported", name))
	default:
		return nil, NewError(op, KindEngineInit, ErrUnknownEngine, fmt.Sprintf("engine: %q", name))
	}
}

// NewOpener binds an engine name and config into an Opener.
func NewOpener(name string, cfg Config) Opener {
	return func(ctx context.Context, opts Options) (Engine, error) {
		return Open(ctx, name, cfg, opts)
	}
}
