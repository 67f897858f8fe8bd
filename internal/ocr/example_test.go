package ocr_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ocrtool/internal/ocr"
)

// Example demonstrates basic usage of an OCR engine.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	langs, err := ocr.ParseLanguages("en,fr")
	if err != nil {
		log.Fatalf("Invalid language list: %v", err)
	}

	// Create engine - cloud credentials are passed through Config
	engine, err := ocr.Open(ctx, ocr.EngineTesseract, ocr.Config{}, ocr.Options{Languages: langs})
	if err != nil {
		log.Fatalf("Failed to create OCR engine: %v", err)
	}
	defer engine.Close()

	detections, err := engine.Detect(ctx, "sample_receipt.png")
	if err != nil {
		log.Fatalf("Failed to detect text: %v", err)
	}

	for i, d := range detections {
		fmt.Printf("%d: %q (%.3f)\n", i+1, d.Text, d.Confidence)
	}
}

// ExampleKindOf demonstrates telling failure kinds apart.
func ExampleKindOf() {
	ctx := context.Background()

	engine, err := ocr.Open(ctx, ocr.EngineVision, ocr.Config{}, ocr.Options{Languages: []string{"en"}})
	if err != nil {
		switch ocr.KindOf(err) {
		case ocr.KindEngineInit:
			if errors.Is(err, ocr.ErrMissingCredentials) {
				log.Printf("Please set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
				return
			}
			log.Printf("Engine could not start: %v", err)
			return
		default:
			log.Fatalf("Unexpected failure: %v", err)
		}
	}
	defer engine.Close()

	if _, err := engine.Detect(ctx, "missing.png"); err != nil {
		switch ocr.KindOf(err) {
		case ocr.KindFileAccess:
			log.Printf("Image could not be read: %v", err)
		case ocr.KindDetection:
			log.Printf("Vision API failed: %v", err)
		}
	}
}
