// Package tesseract provides the gosseract-backed OCR engine used by
// default. Importing the package registers the engine.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/screentel/screentel/internal/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine(DefaultConfig()))
}

// Config controls the Tesseract client setup per recognition call.
type Config struct {
	// Languages holds trained-data codes, e.g. ["chi_sim", "eng"].
	Languages []string
	// PageSegMode is the Tesseract page segmentation mode.
	PageSegMode gosseract.PageSegMode
	// DPI is passed to Tesseract as user_defined_dpi when > 0.
	DPI int
}

// DefaultConfig targets Chinese mobile-network diagnostic screens with mixed
// CJK and Latin text laid out as a uniform block.
func DefaultConfig() Config {
	return Config{
		Languages:   []string{"chi_sim", "eng"},
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
	}
}

// Engine implements ocr.Engine on top of gosseract. A fresh client is
// created per call; gosseract clients are not safe for concurrent use.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs Tesseract over the image and maps word boxes into the
// pipeline's region model.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if img == nil {
		return nil, fmt.Errorf("tesseract: nil image")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("tesseract: encode image: %w", err)
	}

	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}
	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("tesseract: set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(e.cfg.PageSegMode); err != nil {
		return nil, fmt.Errorf("tesseract: set page segmentation mode: %w", err)
	}
	if e.cfg.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", fmt.Sprint(e.cfg.DPI)); err != nil {
			return nil, fmt.Errorf("tesseract: set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognize text: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract: word boxes: %w", err)
	}

	b := img.Bounds()
	res := &ocr.Result{
		Text:    strings.TrimSpace(text),
		Regions: make([]ocr.TextRegion, 0, len(boxes)),
		Width:   b.Dx(),
		Height:  b.Dy(),
	}
	for _, bb := range boxes {
		word := strings.TrimSpace(bb.Word)
		if word == "" || bb.Confidence <= 0 {
			continue
		}
		res.Regions = append(res.Regions, ocr.TextRegion{
			Text: word,
			Box: ocr.Box{
				X: bb.Box.Min.X,
				Y: bb.Box.Min.Y,
				W: bb.Box.Dx(),
				H: bb.Box.Dy(),
			},
			Confidence: bb.Confidence,
		})
	}
	return res, nil
}
