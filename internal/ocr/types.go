package ocr

import (
	"context"
	"image"
)

// Box is an axis-aligned bounding box in pixel coordinates with the origin
// in the upper-left corner of the image.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// TextRegion is a single transcribed fragment (typically one word) with its
// source bounding box and recognition confidence. Confidence is on the
// engine's native scale; Tesseract reports 0-100.
type TextRegion struct {
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// Result is the engine output for one image: the full transcribed text plus
// the ordered sequence of word regions it was assembled from.
type Result struct {
	Text    string       `json:"text"`
	Regions []TextRegion `json:"regions"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
}

// AverageConfidence returns the mean confidence over regions with a positive
// confidence, or 0 when there are none.
func (r *Result) AverageConfidence() float64 {
	if r == nil {
		return 0
	}
	var sum float64
	var n int
	for _, reg := range r.Regions {
		if reg.Confidence > 0 {
			sum += reg.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}
