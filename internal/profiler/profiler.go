// Package profiler computes per-region brightness and clarity statistics
// from a grayscale screenshot. All functions are pure with respect to their
// inputs; no state carries over between regions or requests.
package profiler

import (
	"image"

	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/utils"
)

// Profile holds the derived pixel statistics for one text region. Values are
// computed once from a clamped crop and never mutated.
type Profile struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`

	// Contrast is the crop's standard deviation, surfaced separately from
	// Std for semantic clarity at the classifier boundary.
	Contrast float64 `json:"contrast"`
	// Sharpness is the variance of a Laplacian edge response over the crop.
	Sharpness float64 `json:"sharpness"`
	// EdgeDensity is the fraction of crop pixels flagged as edges.
	EdgeDensity float64 `json:"edge_density"`
}

// Config holds the fixed edge-detection thresholds. These are applied
// identically to every region in a request; they are never recalibrated
// per image.
type Config struct {
	EdgeLowThreshold  float64 `mapstructure:"edge_low_threshold" yaml:"edge_low_threshold" json:"edge_low_threshold"`
	EdgeHighThreshold float64 `mapstructure:"edge_high_threshold" yaml:"edge_high_threshold" json:"edge_high_threshold"`
}

// DefaultConfig returns the standard dual thresholds for edge flagging.
func DefaultConfig() Config {
	return Config{
		EdgeLowThreshold:  50,
		EdgeHighThreshold: 150,
	}
}

// Profiler derives Profiles from grayscale crops.
type Profiler struct {
	cfg Config
}

// New creates a Profiler with the given configuration.
func New(cfg Config) *Profiler { return &Profiler{cfg: cfg} }

// Profile computes statistics for the region box within the grayscale image.
// The box is clamped to the image first; a clamped box with no area yields
// ok=false and no profile, which callers treat as a skip rather than an
// error.
func (p *Profiler) Profile(gray *image.Gray, box ocr.Box) (Profile, bool) {
	if gray == nil {
		return Profile{}, false
	}
	b := gray.Bounds()
	rect, ok := utils.ClampRect(box.X, box.Y, box.W, box.H, b.Dx(), b.Dy())
	if !ok {
		return Profile{}, false
	}

	vals := utils.CropGray(gray, rect)
	w, h := rect.Dx(), rect.Dy()

	mean, std := meanStd(vals)
	mn, mx := minMax(vals)
	prof := Profile{
		Mean:        mean,
		Std:         std,
		Min:         mn,
		Max:         mx,
		Median:      median(vals),
		Contrast:    std,
		Sharpness:   laplacianVariance(vals, w, h),
		EdgeDensity: edgeDensity(vals, w, h, p.cfg.EdgeLowThreshold, p.cfg.EdgeHighThreshold),
	}
	return prof, true
}

// ProfileRegion is a convenience wrapper converting an image.Rectangle crop
// request into a Profile.
func (p *Profiler) ProfileRegion(gray *image.Gray, rect image.Rectangle) (Profile, bool) {
	return p.Profile(gray, ocr.Box{X: rect.Min.X, Y: rect.Min.Y, W: rect.Dx(), H: rect.Dy()})
}
