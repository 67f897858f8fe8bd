package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an OCR failure so callers can react to it without
// inspecting error strings.
type Kind int

const (
	// KindUnknown is any failure that could not be classified.
	KindUnknown Kind = iota

	// KindArgument is a malformed request, such as an empty language list.
	KindArgument

	// KindFileAccess is a missing, unreadable, or undecodable image.
	KindFileAccess

	// KindEngineInit is a failure while constructing or configuring an engine.
	KindEngineInit

	// KindDetection is a failure inside the engine's detect call.
	KindDetection
)

// String returns the snake_case name of the kind, as used in log fields.
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "argument"
	case KindFileAccess:
		return "file_access"
	case KindEngineInit:
		return "engine_init"
	case KindDetection:
		return "detection"
	default:
		return "unknown"
	}
}

// Common OCR processing errors
var (
	// ErrNoLanguages is returned when the language list is empty or has blank entries.
	ErrNoLanguages = errors.New("at least one language code is required")

	// ErrUnsupportedLanguage is returned when a language code is not recognized
	// by the selected engine.
	ErrUnsupportedLanguage = errors.New("unsupported language code")

	// ErrImageNotFound is returned when the image path does not exist.
	ErrImageNotFound = errors.New("image file not found")

	// ErrInvalidImage is returned when the file is not a regular, decodable image.
	ErrInvalidImage = errors.New("invalid or unsupported image file")

	// ErrUnknownEngine is returned when the engine name is not registered.
	ErrUnknownEngine = errors.New("unknown OCR engine")

	// ErrGPUUnsupported is returned when GPU execution is requested from an
	// engine that only runs on the CPU.
	ErrGPUUnsupported = errors.New("GPU execution is not supported by this engine")

	// ErrEngineUnavailable is returned when the engine was not compiled in.
	ErrEngineUnavailable = errors.New("OCR engine not available in this build")

	// ErrMissingCredentials is returned when a cloud engine has no Google Cloud
	// credentials to work with.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidConfiguration is returned when required engine settings are missing.
	ErrInvalidConfiguration = errors.New("invalid OCR engine configuration")

	// ErrDetectionFailed is returned when the engine fails to recognize text.
	ErrDetectionFailed = errors.New("text detection failed")
)

// Error wraps errors with the operation that failed and its Kind.
type Error struct {
	// Op is the operation that failed (e.g., "Detect", "CheckImage").
	Op string

	// Kind classifies the failure.
	Kind Kind

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with the specified operation, kind and underlying error.
func NewError(op string, kind Kind, err error, details string) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Err:     err,
		Details: details,
	}
}

// WrapError wraps an error as an *Error if it isn't already one.
func WrapError(op string, kind Kind, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewError(op, kind, err, details)
}

// KindOf reports the Kind of err. Errors that were never wrapped fall back to
// sentinel matching, then KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return ocrErr.Kind
	}

	switch {
	case errors.Is(err, ErrNoLanguages):
		return KindArgument
	case errors.Is(err, ErrImageNotFound), errors.Is(err, ErrInvalidImage):
		return KindFileAccess
	case errors.Is(err, ErrUnsupportedLanguage),
		errors.Is(err, ErrUnknownEngine),
		errors.Is(err, ErrGPUUnsupported),
		errors.Is(err, ErrEngineUnavailable),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidConfiguration),
		errors.Is(err, ErrPermissionDenied):
		return KindEngineInit
	case errors.Is(err, ErrDetectionFailed),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindDetection
	default:
		return KindUnknown
	}
}
