//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine runs Tesseract through the gosseract bindings and reports
// one detection per text line.
//
// The native calls cannot be interrupted, so they run on their own goroutine
// holding mu. Detect stops waiting when ctx is done; the client is freed only
// once the native call has returned.
type tesseractEngine struct {
	mu        sync.Mutex
	closed    bool
	client    *gosseract.Client
	languages []string
}

type tesseractOutcome struct {
	detections []Detection
	err        error
}

func newTesseractEngine(_ context.Context, cfg Config, opts Options) (Engine, error) {
	const op = "newTesseractEngine"

	langs, err := TesseractLanguages(opts.Languages)
	if err != nil {
		return nil, NewError(op, KindEngineInit, err, "")
	}

	installed, err := installedTesseractLanguages(cfg.TessdataPrefix)
	if err == nil && len(installed) > 0 {
		have := make(map[string]bool, len(installed))
		for _, lang := range installed {
			have[lang] = true
		}
		for _, lang := range langs {
			if !have[lang] {
				return nil, NewError(op, KindEngineInit, ErrUnsupportedLanguage,
					fmt.Sprintf("no traineddata for %q (installed: %s)", lang, strings.Join(installed, ", ")))
			}
		}
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, NewError(op, KindEngineInit, err, "failed to set tessdata path")
		}
	}
	if err := client.SetLanguage(langs...); err != nil {
		client.Close()
		return nil, NewError(op, KindEngineInit, err, "failed to set language")
	}

	return &tesseractEngine{client: client, languages: langs}, nil
}

// Detect recognizes text lines in the image. It returns ctx's error as soon
// as ctx is done, even while Tesseract is still working.
func (t *tesseractEngine) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	const op = "Detect"

	if err := ctx.Err(); err != nil {
		return nil, NewError(op, KindDetection, err, "")
	}

	done := make(chan tesseractOutcome, 1)
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		detections, err := t.recognize(imagePath)
		done <- tesseractOutcome{detections: detections, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, NewError(op, KindDetection, ctx.Err(), "tesseract recognition interrupted")
	case res := <-done:
		return res.detections, res.err
	}
}

// recognize runs the blocking native calls. Callers must hold t.mu.
func (t *tesseractEngine) recognize(imagePath string) ([]Detection, error) {
	const op = "Detect"

	if t.closed {
		return nil, NewError(op, KindDetection, ErrEngineUnavailable, "tesseract engine is closed")
	}
	if err := t.client.SetImage(imagePath); err != nil {
		return nil, NewError(op, KindFileAccess, err, "failed to set image")
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, NewError(op, KindDetection, ErrDetectionFailed, err.Error())
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		detections = append(detections, Detection{
			Box:        RectBox(box.Box),
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
		})
	}
	return detections, nil
}

// Close releases the native Tesseract handle. If an interrupted recognition
// is still running, the handle is released in the background once it ends.
func (t *tesseractEngine) Close() error {
	if t.mu.TryLock() {
		defer t.mu.Unlock()
		return t.release()
	}
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		_ = t.release()
	}()
	return nil
}

// release frees the client once. Callers must hold t.mu.
func (t *tesseractEngine) release() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.client.Close()
}

// installedTesseractLanguages lists traineddata names under prefix, or under
// Tesseract's default data path when prefix is empty.
func installedTesseractLanguages(prefix string) ([]string, error) {
	if prefix == "" {
		return gosseract.GetAvailableLanguages()
	}

	entries, err := os.ReadDir(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to read tessdata directory: %w", err)
	}

	var langs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".traineddata" {
			continue
		}
		langs = append(langs, strings.TrimSuffix(entry.Name(), ".traineddata"))
	}
	sort.Strings(langs)
	return langs, nil
}
