//go:build !tesseract

package ocr

import (
	"context"
	"fmt"
)

func newTesseractEngine(_ context.Context, _ Config, _ Options) (Engine, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags tesseract (requires cgo and libtesseract)", ErrEngineUnavailable)
}

func installedTesseractLanguages(_ string) ([]string, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags tesseract (requires cgo and libtesseract)", ErrEngineUnavailable)
}
