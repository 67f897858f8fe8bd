package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Result is the outcome of one OCR request. Exactly one of its two JSON
// shapes is emitted: the success record, or the failure record when Error
// is non-empty.
type Result struct {
	// Text is every trimmed detection text joined by single spaces.
	Text string

	// Texts holds each detection's trimmed text, in engine order.
	Texts []string

	// Confidences holds each detection's confidence rounded to 3 decimals,
	// parallel to Texts.
	Confidences []float64

	// ProcessingTime is wall-clock seconds rounded to 2 decimals.
	ProcessingTime float64

	// Detections is the number of detections, equal to len(Texts).
	Detections int

	// Error is the failure message. Empty on success.
	Error string

	// Err is the underlying failure, kept for in-process callers. Not serialized.
	Err error
}

// Failed reports whether r carries the failure shape.
func (r *Result) Failed() bool {
	return r.Error != ""
}

type successRecord struct {
	TextExtracted    string    `json:"text_extracted"`
	IndividualTexts  []string  `json:"individual_texts"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	ProcessingTime   float64   `json:"processing_time"`
	TotalDetections  int       `json:"total_detections"`
}

type failureRecord struct {
	Error            string    `json:"error"`
	TextExtracted    string    `json:"text_extracted"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	ProcessingTime   float64   `json:"processing_time"`
}

// MarshalJSON encodes r as the success or the failure record.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return marshal(failureRecord{
			Error:            r.Error,
			TextExtracted:    "",
			ConfidenceScores: []float64{},
			ProcessingTime:   0,
		})
	}

	texts := r.Texts
	if texts == nil {
		texts = []string{}
	}
	scores := r.Confidences
	if scores == nil {
		scores = []float64{}
	}
	return marshal(successRecord{
		TextExtracted:    r.Text,
		IndividualTexts:  texts,
		ConfidenceScores: scores,
		ProcessingTime:   r.ProcessingTime,
		TotalDetections:  r.Detections,
	})
}

// failure builds the failure-shaped Result for err.
func failure(err error) *Result {
	return &Result{
		Error:       err.Error(),
		Confidences: []float64{},
		Err:         err,
	}
}

// WriteResult writes r to w as a single JSON line. Non-ASCII characters and
// HTML-sensitive characters are written literally.
func WriteResult(w io.Writer, r *Result) error {
	return writeJSONLine(w, r)
}

// UsageRecord is the record emitted when the command line is incomplete.
type UsageRecord struct {
	Error string `json:"error"`
}

// WriteUsageError writes the usage error record to w as a single JSON line.
func WriteUsageError(w io.Writer, usage string) error {
	return writeJSONLine(w, UsageRecord{Error: fmt.Sprintf("Missing arguments. Usage: %s", usage)})
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON result: %w", err)
	}
	return nil
}

// round rounds v half away from zero to the given number of decimal places.
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// clamp01 limits a confidence score to [0, 1].
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
