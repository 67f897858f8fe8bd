//go:build tesseract

package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// requireEnglish skips the test unless Tesseract can load English traineddata.
func requireEnglish(t *testing.T) {
	t.Helper()
	langs, err := installedTesseractLanguages("")
	if err != nil || !slices.Contains(langs, "eng") {
		t.Skip("tesseract English traineddata not installed")
	}
}

// renderText draws text with basicfont and upscales it so Tesseract can read it.
func renderText(t *testing.T, text string, scale int) string {
	t.Helper()

	width := len(text)*7 + 40
	img := image.NewRGBA(image.Rect(0, 0, width, 40))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)

	scaled := imaging.Resize(img, width*scale, 40*scale, imaging.NearestNeighbor)
	path := filepath.Join(t.TempDir(), "text.png")
	if err := imaging.Save(scaled, path); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}
	return path
}

func TestTesseractDetect(t *testing.T) {
	requireEnglish(t)

	engine, err := Open(context.Background(), EngineTesseract, Config{}, Options{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer engine.Close()

	detections, err := engine.Detect(context.Background(), renderText(t, "HELLO WORLD", 4))
	if err != nil {
		t.Fatalf("Detect() unexpected error: %v", err)
	}
	if len(detections) == 0 {
		t.Fatal("expected at least one text line")
	}

	var all []string
	for _, d := range detections {
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1]", d.Confidence)
		}
		if len(d.Box) != 4 {
			t.Errorf("box has %d points, want 4", len(d.Box))
		}
		all = append(all, d.Text)
	}
	if joined := strings.ToUpper(strings.Join(all, " ")); !strings.Contains(joined, "HELLO") {
		t.Errorf("recognized %q, want it to contain HELLO", joined)
	}
}

func TestTesseractBlankImage(t *testing.T) {
	requireEnglish(t)

	engine, err := Open(context.Background(), EngineTesseract, Config{}, Options{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer engine.Close()

	detections, err := engine.Detect(context.Background(), writeTestImage(t, 200, 80))
	if err != nil {
		t.Fatalf("Detect() unexpected error: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("blank image produced %d detections: %+v", len(detections), detections)
	}
}

func TestTesseractCanceledContext(t *testing.T) {
	requireEnglish(t)

	engine, err := Open(context.Background(), EngineTesseract, Config{}, Options{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Detect(ctx, writeTestImage(t, 10, 10)); KindOf(err) != KindDetection {
		t.Errorf("Detect() error = %v, want detection error", err)
	}
}

func TestTesseractDeadlineDuringRecognition(t *testing.T) {
	requireEnglish(t)

	engine, err := Open(context.Background(), EngineTesseract, Config{}, Options{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	te := engine.(*tesseractEngine)

	// Holding the lock keeps the recognition goroutine blocked, standing in
	// for a long native call.
	te.mu.Lock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = engine.Detect(ctx, renderText(t, "HELLO", 2))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Detect() error = %v, want context.DeadlineExceeded", err)
	}
	if KindOf(err) != KindDetection {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindDetection)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Detect() took %v after the deadline", elapsed)
	}

	if err := engine.Close(); err != nil {
		t.Errorf("Close() during recognition = %v, want nil", err)
	}
	te.mu.Unlock()

	// The pending recognition must not touch the released client.
	deadline := time.Now().Add(5 * time.Second)
	for {
		te.mu.Lock()
		closed := te.closed
		te.mu.Unlock()
		if closed || time.Now().After(deadline) {
			if !closed {
				t.Error("client was not released after the recognition ended")
			}
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTesseractCloseTwice(t *testing.T) {
	requireEnglish(t)

	engine, err := Open(context.Background(), EngineTesseract, Config{}, Options{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if _, err := engine.Detect(context.Background(), writeTestImage(t, 10, 10)); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("Detect() after Close error = %v, want ErrEngineUnavailable", err)
	}
}

func TestInstalledTesseractLanguagesFromPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fra.traineddata", "eng.traineddata", "README"} {
		writeBytesAt(t, filepath.Join(dir, name))
	}

	langs, err := installedTesseractLanguages(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(langs, []string{"eng", "fra"}) {
		t.Errorf("languages = %v, want [eng fra]", langs)
	}

	_, err = Open(context.Background(), EngineTesseract, Config{TessdataPrefix: dir}, Options{Languages: []string{"de"}})
	if KindOf(err) != KindEngineInit {
		t.Errorf("Open(de) error = %v, want engine init error", err)
	}
}

func writeBytesAt(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatal(err)
	}
}
