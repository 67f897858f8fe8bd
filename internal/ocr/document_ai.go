package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// documentProcessor is the subset of *documentai.DocumentProcessorClient used here.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// documentAIEngine implements Engine using a Document AI OCR processor.
// Each detected line becomes one detection.
type documentAIEngine struct {
	client        documentProcessor
	processorName string
	hints         []string
}

func newDocumentAIEngine(ctx context.Context, cfg Config, opts Options) (Engine, error) {
	const op = "newDocumentAIEngine"

	if cfg.ProjectID == "" {
		return nil, NewError(op, KindEngineInit, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, NewError(op, KindEngineInit, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	location := cfg.Location
	if location == "" {
		location = "us"
	}

	hints, err := LanguageHints(opts.Languages)
	if err != nil {
		return nil, NewError(op, KindEngineInit, err, "")
	}

	clientOptions := credentialOptions(cfg)
	if location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, NewError(op, KindEngineInit, err, fmt.Sprintf("failed to create Document AI client for location: %s", location))
	}

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, location, cfg.ProcessorID)
	return newDocumentAIEngineWithClient(client, name, hints), nil
}

// newDocumentAIEngineWithClient creates an engine with an explicit client (for testing).
func newDocumentAIEngineWithClient(client documentProcessor, processorName string, hints []string) *documentAIEngine {
	return &documentAIEngine{client: client, processorName: processorName, hints: hints}
}

// Detect sends the image as a raw document to the OCR processor.
func (d *documentAIEngine) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	const op = "Detect"

	content, err := readImageFile(imagePath)
	if err != nil {
		return nil, WrapError(op, KindFileAccess, err, "")
	}

	req := &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: imageMimeType(imagePath, content),
			},
		},
		SkipHumanReview: true,
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{LanguageHints: d.hints},
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, googleCallError(op, "Document AI", err)
	}
	if resp.GetDocument() == nil {
		return nil, NewError(op, KindDetection, ErrDetectionFailed, "no document in response")
	}

	return documentLines(resp.GetDocument()), nil
}

// Close closes the underlying Document AI client.
func (d *documentAIEngine) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

// documentLines converts every page line into a detection, in page order.
func documentLines(doc *documentaipb.Document) []Detection {
	detections := []Detection{}
	for _, page := range doc.GetPages() {
		for _, line := range page.GetLines() {
			text := textFromLayout(line.GetLayout(), doc.GetText())
			if strings.TrimSpace(text) == "" {
				continue
			}
			detections = append(detections, Detection{
				Box:        layoutBox(line.GetLayout(), page.GetDimension()),
				Text:       text,
				Confidence: float64(line.GetLayout().GetConfidence()),
			})
		}
	}
	return detections
}

// textFromLayout resolves a layout's text anchor against the document text.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout.GetTextAnchor() == nil {
		return ""
	}
	runes := []rune(fullText)
	total := len(runes)

	var sb strings.Builder
	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start := int(seg.GetStartIndex())
		end := int(seg.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		sb.WriteString(string(runes[start:end]))
	}
	return sb.String()
}

// layoutBox prefers pixel vertices and falls back to normalized vertices
// scaled by the page dimension.
func layoutBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) Box {
	poly := layout.GetBoundingPoly()
	if vertices := poly.GetVertices(); len(vertices) > 0 {
		box := make(Box, 0, len(vertices))
		for _, v := range vertices {
			box = append(box, image.Pt(int(v.GetX()), int(v.GetY())))
		}
		return box
	}

	normalized := poly.GetNormalizedVertices()
	box := make(Box, 0, len(normalized))
	for _, v := range normalized {
		x := int(math.Round(float64(v.GetX() * dim.GetWidth())))
		y := int(math.Round(float64(v.GetY() * dim.GetHeight())))
		box = append(box, image.Pt(x, y))
	}
	return box
}

// imageMimeType sniffs the content and falls back to the file extension for
// formats http.DetectContentType does not know, such as TIFF.
func imageMimeType(imagePath string, content []byte) string {
	if sniffed := http.DetectContentType(content); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".gif":
		return "image/gif"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
