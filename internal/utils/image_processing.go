package utils

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToGray converts an image to 8-bit grayscale using the luminance weighting
// from the imaging package.
func ToGray(img image.Image) *image.Gray {
	if img == nil {
		return nil
	}
	// imaging.Grayscale produces an NRGBA with R=G=B; collapse to one channel.
	src := imaging.Grayscale(img)
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	dy, dx := b.Dy(), b.Dx()
	for y := 0; y < dy; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		dstRow := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := 0; x < dx; x++ {
			dstRow[x] = srcRow[x*4]
		}
	}
	return gray
}

// ClampRect clamps a (x, y, w, h) box to the given image dimensions. The
// origin is clamped to [0, dim) and the extent shrunk so the box stays inside
// the image. The second return value is false when the clamped box has
// non-positive area and should be skipped.
func ClampRect(x, y, w, h, imgWidth, imgHeight int) (image.Rectangle, bool) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > imgWidth-x {
		w = imgWidth - x
	}
	if h > imgHeight-y {
		h = imgHeight - y
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// CropGray returns the pixel intensities of a grayscale sub-rectangle as a
// flat row-major slice. The rectangle must already be clamped to the image.
func CropGray(gray *image.Gray, rect image.Rectangle) []float64 {
	w := rect.Dx()
	h := rect.Dy()
	vals := make([]float64, 0, w*h)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := gray.Pix[y*gray.Stride+rect.Min.X : y*gray.Stride+rect.Min.X+w]
		for _, p := range row {
			vals = append(vals, float64(p))
		}
	}
	return vals
}
