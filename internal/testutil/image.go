package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/screentel/screentel/internal/ocr"
)

// Label describes one carrier name painted onto a synthetic screenshot.
// Luma controls how bright the label panel renders, which drives the
// region profiling stages.
type Label struct {
	Text string
	Box  ocr.Box
	Luma uint8
}

// ScreenshotSpec describes a synthetic diagnostic screenshot.
type ScreenshotSpec struct {
	Width      int
	Height     int
	Background uint8
	Labels     []Label
}

// DefaultScreenshotSpec returns a two-carrier screenshot with one bright
// and one dim label.
func DefaultScreenshotSpec() ScreenshotSpec {
	return ScreenshotSpec{
		Width:      400,
		Height:     300,
		Background: 20,
		Labels: []Label{
			{Text: "中国移动", Box: ocr.Box{X: 20, Y: 20, W: 120, H: 40}, Luma: 220},
			{Text: "中国联通", Box: ocr.Box{X: 220, Y: 20, W: 120, H: 40}, Luma: 70},
		},
	}
}

// GenerateScreenshot renders the spec into an image. Label panels are
// filled with the configured luma; the text itself is drawn darker so the
// panel keeps a non-zero contrast.
func GenerateScreenshot(spec ScreenshotSpec) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: spec.Background}), image.Point{}, draw.Src)

	for _, label := range spec.Labels {
		rect := image.Rect(label.Box.X, label.Box.Y, label.Box.X+label.Box.W, label.Box.Y+label.Box.H)
		draw.Draw(img, rect, image.NewUniform(color.Gray{Y: label.Luma}), image.Point{}, draw.Src)

		textLuma := uint8(0)
		if label.Luma < 128 {
			textLuma = 255
		}
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Gray{Y: textLuma}),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(label.Box.X+4, label.Box.Y+label.Box.H/2),
		}
		drawer.DrawString(label.Text)
	}
	return img
}

// TextRegions returns the OCR regions matching the spec's labels, for
// pairing a synthetic screenshot with a stub engine result.
func (s ScreenshotSpec) TextRegions(confidence float64) []ocr.TextRegion {
	regions := make([]ocr.TextRegion, 0, len(s.Labels))
	for _, label := range s.Labels {
		regions = append(regions, ocr.TextRegion{
			Text:       label.Text,
			Box:        label.Box,
			Confidence: confidence,
		})
	}
	return regions
}

// SaveImage writes an image as PNG, creating parent directories.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))

	file, err := os.Create(path) //nolint:gosec // test-controlled path
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	require.NoError(t, png.Encode(file, img))
}

// WriteScreenshot renders the spec and saves it under dir with the given
// name, returning the full path.
func WriteScreenshot(t *testing.T, spec ScreenshotSpec, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	SaveImage(t, GenerateScreenshot(spec), path)
	return path
}
