package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// VisionFeature requests dense document text with word-level boxes.
const VisionFeature = "DOCUMENT_TEXT_DETECTION"

// DefaultLanguageHints cover Marathi and Hindi rolls with English labels.
var DefaultLanguageHints = []string{"mr", "hi", "en"}

// VisionConfig configures the Google Cloud Vision backend.
type VisionConfig struct {
	APIKey          string
	CredentialsFile string
	LanguageHints   []string
}

// VisionRecognizer calls the Cloud Vision images:annotate endpoint.
type VisionRecognizer struct {
	svc   *vision.Service
	hints []string
}

// NewVisionRecognizer creates a Vision client. Without an API key or
// credentials file, application default credentials are used.
func NewVisionRecognizer(ctx context.Context, cfg VisionConfig) (*VisionRecognizer, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	hints := cfg.LanguageHints
	if len(hints) == 0 {
		hints = DefaultLanguageHints
	}
	return &VisionRecognizer{svc: svc, hints: hints}, nil
}

// Recognize implements Recognizer.
func (v *VisionRecognizer) Recognize(ctx context.Context, image []byte) (*Result, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:        &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features:     []*vision.Feature{{Type: VisionFeature}},
			ImageContext: &vision.ImageContext{LanguageHints: v.hints},
		}},
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return &Result{PageToken: true}, nil
	}
	return convertVision(resp.Responses[0])
}

func convertVision(r *vision.AnnotateImageResponse) (*Result, error) {
	if r.Error != nil && r.Error.Code != 0 {
		code := int(r.Error.Code)
		return nil, &ServiceError{
			Code:      code,
			Message:   r.Error.Message,
			Retryable: code == rpcUnavailable || code == rpcResourceExhausted,
		}
	}

	res := &Result{
		Annotations: make([]Annotation, 0, len(r.TextAnnotations)),
		PageToken:   true,
	}
	for _, ta := range r.TextAnnotations {
		a := Annotation{Text: ta.Description}
		if ta.BoundingPoly != nil {
			for _, vx := range ta.BoundingPoly.Vertices {
				a.Vertices = append(a.Vertices, geometry.Vertex{X: int(vx.X), Y: int(vx.Y)})
			}
		}
		res.Annotations = append(res.Annotations, a)
	}

	switch {
	case r.FullTextAnnotation != nil:
		res.FullText = r.FullTextAnnotation.Text
	case len(res.Annotations) > 0:
		res.FullText = res.Annotations[0].Text
	}
	return res, nil
}
