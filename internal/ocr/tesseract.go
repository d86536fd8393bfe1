package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Config holds Tesseract recognizer settings.
type Config struct {
	// Languages are Tesseract language codes, e.g. "eng".
	Languages []string `json:"languages"`

	// MinConfidence drops words scoring below it (0.0-1.0).
	MinConfidence float64 `json:"min_confidence"`

	// PageSegMode is the Tesseract page segmentation mode.
	PageSegMode gosseract.PageSegMode `json:"page_seg_mode"`

	Preprocess Preprocess `json:"preprocess"`
}

// DefaultConfig returns English recognition with automatic page segmentation.
func DefaultConfig() Config {
	return Config{
		Languages:   []string{"eng"},
		PageSegMode: gosseract.PSM_AUTO,
		Preprocess:  DefaultPreprocess(),
	}
}

// TesseractRecognizer implements Recognizer with a long-lived gosseract client.
type TesseractRecognizer struct {
	config Config
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseractRecognizer creates a recognizer and configures its client.
func NewTesseractRecognizer(config Config) (*TesseractRecognizer, error) {
	if len(config.Languages) == 0 {
		config.Languages = []string{"eng"}
	}

	client := gosseract.NewClient()

	if err := client.SetLanguage(config.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(config.PageSegMode); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &TesseractRecognizer{
		config: config,
		client: client,
	}, nil
}

// Recognize runs word-level OCR over the frame.
func (r *TesseractRecognizer) Recognize(frame *gocv.Mat) ([]TextRegion, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	prepared, scale := r.config.Preprocess.Apply(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return toRegions(boxes, scale, r.config.MinConfidence), nil
}

// Close releases the Tesseract client.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// toRegions converts Tesseract word boxes into frame-space regions,
// keeping Tesseract's reading order.
func toRegions(boxes []gosseract.BoundingBox, scale, minConfidence float64) []TextRegion {
	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}

		confidence := box.Confidence / 100.0
		if confidence < minConfidence {
			continue
		}

		regions = append(regions, TextRegion{
			Quad:       QuadFromRect(unscaleRect(box.Box, scale)),
			Text:       word,
			Confidence: confidence,
		})
	}
	return regions
}
