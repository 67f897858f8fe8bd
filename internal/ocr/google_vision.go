package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// MaxFileSizeBytes is the maximum inline image size accepted by the Google APIs (20MB)
const MaxFileSizeBytes = 20 * 1024 * 1024

// imageAnnotator is the subset of *vision.ImageAnnotatorClient used here.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// visionEngine implements Engine using Google Cloud Vision document text
// detection. Each paragraph becomes one detection.
type visionEngine struct {
	client imageAnnotator
	hints  []string
}

func newVisionEngine(ctx context.Context, cfg Config, opts Options) (Engine, error) {
	const op = "newVisionEngine"

	hints, err := LanguageHints(opts.Languages)
	if err != nil {
		return nil, NewError(op, KindEngineInit, err, "")
	}

	clientOptions := credentialOptions(cfg)
	client, err := vision.NewImageAnnotatorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, NewError(op, KindEngineInit, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, NewError(op, KindEngineInit, err, "failed to create Vision client")
	}

	return newVisionEngineWithClient(client, hints), nil
}

// newVisionEngineWithClient creates an engine with an explicit client (for testing).
func newVisionEngineWithClient(client imageAnnotator, hints []string) *visionEngine {
	return &visionEngine{client: client, hints: hints}
}

// Detect sends the image inline to the Vision API.
func (v *visionEngine) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	const op = "Detect"

	content, err := readImageFile(imagePath)
	if err != nil {
		return nil, WrapError(op, KindFileAccess, err, "")
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: v.hints},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, googleCallError(op, "Vision API", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, NewError(op, KindDetection, ErrDetectionFailed, "no response from Vision API")
	}

	imageResp := resp.GetResponses()[0]
	if imageResp.GetError() != nil {
		return nil, NewError(op, KindDetection, ErrDetectionFailed, fmt.Sprintf("Vision API error: %s", imageResp.GetError().GetMessage()))
	}

	return visionParagraphs(imageResp.GetFullTextAnnotation()), nil
}

// Close closes the underlying Vision client.
func (v *visionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// visionParagraphs flattens pages, blocks and paragraphs into detections.
func visionParagraphs(annotation *visionpb.TextAnnotation) []Detection {
	detections := []Detection{}
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, para := range block.GetParagraphs() {
				text := paragraphText(para)
				if strings.TrimSpace(text) == "" {
					continue
				}
				detections = append(detections, Detection{
					Box:        visionBox(para.GetBoundingBox()),
					Text:       text,
					Confidence: float64(para.GetConfidence()),
				})
			}
		}
	}
	return detections
}

// paragraphText rebuilds a paragraph's text from its symbols and detected breaks.
func paragraphText(para *visionpb.Paragraph) string {
	var sb strings.Builder
	for _, word := range para.GetWords() {
		for _, symbol := range word.GetSymbols() {
			sb.WriteString(symbol.GetText())
			switch symbol.GetProperty().GetDetectedBreak().GetType() {
			case visionpb.TextAnnotation_DetectedBreak_SPACE,
				visionpb.TextAnnotation_DetectedBreak_SURE_SPACE,
				visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
				visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
				sb.WriteByte(' ')
			case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
				sb.WriteByte('-')
			}
		}
	}
	return sb.String()
}

func visionBox(poly *visionpb.BoundingPoly) Box {
	vertices := poly.GetVertices()
	box := make(Box, 0, len(vertices))
	for _, v := range vertices {
		box = append(box, image.Pt(int(v.GetX()), int(v.GetY())))
	}
	return box
}

// credentialOptions mirrors the credential lookup order used for every
// Google client: inline JSON, then a key file, then application defaults.
func credentialOptions(cfg Config) []option.ClientOption {
	var clientOptions []option.ClientOption
	if cfg.CredentialsJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else if cfg.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return clientOptions
}

// readImageFile loads an image for inline upload, enforcing MaxFileSizeBytes.
func readImageFile(imagePath string) ([]byte, error) {
	const op = "readImageFile"

	info, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewError(op, KindFileAccess, ErrImageNotFound, imagePath)
		}
		return nil, NewError(op, KindFileAccess, err, "error accessing image file")
	}
	if info.Size() > MaxFileSizeBytes {
		return nil, NewError(op, KindFileAccess, ErrInvalidImage,
			fmt.Sprintf("file too large (%d bytes). Maximum size is %d bytes (20MB)", info.Size(), MaxFileSizeBytes))
	}

	content, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, NewError(op, KindFileAccess, err, "failed to read image file")
	}
	return content, nil
}
