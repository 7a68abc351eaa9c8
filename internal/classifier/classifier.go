// Package classifier turns per-region brightness profiles into an
// active/inactive verdict per carrier label and picks the single selected
// carrier for the screen.
package classifier

import (
	"sort"

	"github.com/screentel/screentel/internal/profiler"
)

// Status labels a carrier region as the selected one or not.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// BrightnessLevel buckets a region's mean intensity into one of five fixed
// levels. Boundaries are absolute and identical for every region in a
// request.
type BrightnessLevel string

const (
	BrightnessVeryLow  BrightnessLevel = "very_low"
	BrightnessLow      BrightnessLevel = "low"
	BrightnessMedium   BrightnessLevel = "medium"
	BrightnessHigh     BrightnessLevel = "high"
	BrightnessVeryHigh BrightnessLevel = "very_high"
)

// Indicator weights for the activation score. A label is active only when
// the weighted score exceeds 0.5, which requires at least two of the three
// indicators to hold.
const (
	brightnessWeight = 0.4
	contrastWeight   = 0.3
	sharpnessWeight  = 0.3
	activeScoreMin   = 0.5
)

// Config holds the activation thresholds. Loaded once at startup and passed
// by value; never mutated afterwards.
type Config struct {
	// BrightnessThreshold is the minimum excess over the candidates' average
	// brightness for the brightness indicator to hold.
	BrightnessThreshold float64 `mapstructure:"brightness_threshold" yaml:"brightness_threshold" json:"brightness_threshold"`
	// ContrastThreshold is the minimum contrast (crop standard deviation).
	ContrastThreshold float64 `mapstructure:"contrast_threshold" yaml:"contrast_threshold" json:"contrast_threshold"`
	// SharpnessThreshold is the minimum Laplacian variance.
	SharpnessThreshold float64 `mapstructure:"sharpness_threshold" yaml:"sharpness_threshold" json:"sharpness_threshold"`
	// TieThreshold is the brightness margin compared in the most-bright-wins
	// fallback. The margin is reported but does not change the outcome; the
	// brightest candidate is always selected.
	TieThreshold float64 `mapstructure:"tie_threshold" yaml:"tie_threshold" json:"tie_threshold"`
}

// DefaultConfig returns the standard activation thresholds.
func DefaultConfig() Config {
	return Config{
		BrightnessThreshold: 50,
		ContrastThreshold:   30,
		SharpnessThreshold:  100,
		TieThreshold:        10,
	}
}

// Candidate is one lexicon label with the profile of its representative
// region.
type Candidate struct {
	Name       string
	Profile    profiler.Profile
	Confidence float64
}

// Verdict is the activation decision for one candidate.
type Verdict struct {
	Status          Status          `json:"status"`
	BrightnessLevel BrightnessLevel `json:"brightness_level"`
	Score           float64         `json:"score"`
}

// CarrierState pairs a carrier name with its verdict and the numeric
// brightness the verdict was derived from. The full profile is retained for
// debug output but not serialized into the response.
type CarrierState struct {
	Name string `json:"name"`
	Verdict
	Brightness float64          `json:"brightness"`
	Confidence float64          `json:"confidence,omitempty"`
	Profile    profiler.Profile `json:"-"`
}

// Selection is the classifier output for one image: every candidate's state
// plus the single selected carrier, if any.
type Selection struct {
	States            []CarrierState `json:"carrier_states"`
	ActiveOperator    string         `json:"active_operator,omitempty"`
	AverageBrightness float64        `json:"average_brightness"`
	// Fallback is true when no candidate passed the score rule and the
	// brightest one was selected instead.
	Fallback bool `json:"fallback"`
	// Margin is the brightness lead of the selected candidate over the
	// runner-up in the fallback path, exposed for tuning against
	// Config.TieThreshold.
	Margin float64 `json:"margin,omitempty"`
}

// Classifier scores candidates against immutable thresholds.
type Classifier struct {
	cfg Config
}

// New creates a Classifier with the given configuration.
func New(cfg Config) *Classifier { return &Classifier{cfg: cfg} }

// Classify labels every candidate and selects at most one active carrier.
// It never fails on ambiguous input:
//
//   - zero candidates: no active operator, empty states
//   - one candidate: that candidate is the active operator regardless of its
//     score
//   - otherwise: the brightest score-rule-active candidate wins; if none is
//     active, the brightest overall is reported active (most-bright-wins)
func (c *Classifier) Classify(candidates []Candidate) Selection {
	if len(candidates) == 0 {
		return Selection{}
	}

	avg := averageBrightness(candidates)
	states := make([]CarrierState, len(candidates))
	for i, cand := range candidates {
		states[i] = CarrierState{
			Name:       cand.Name,
			Verdict:    c.verdict(cand.Profile, avg),
			Brightness: cand.Profile.Mean,
			Confidence: cand.Confidence,
			Profile:    cand.Profile,
		}
	}

	sel := Selection{States: states, AverageBrightness: avg}

	if len(states) == 1 {
		states[0].Status = StatusActive
		sel.ActiveOperator = states[0].Name
		return sel
	}

	if idx, ok := brightestActive(states); ok {
		sel.ActiveOperator = states[idx].Name
		return sel
	}

	// No candidate passed the score rule: most-bright-wins. The tie margin
	// is computed against the runner-up but is informational only.
	order := byBrightnessDesc(states)
	first, second := order[0], order[1]
	sel.Fallback = true
	sel.Margin = states[first].Brightness - states[second].Brightness
	states[first].Status = StatusActive
	sel.ActiveOperator = states[first].Name
	return sel
}

// verdict applies the weighted three-indicator score rule.
func (c *Classifier) verdict(p profiler.Profile, avgBrightness float64) Verdict {
	score := 0.0
	if p.Mean-avgBrightness > c.cfg.BrightnessThreshold {
		score += brightnessWeight
	}
	if p.Contrast > c.cfg.ContrastThreshold {
		score += contrastWeight
	}
	if p.Sharpness > c.cfg.SharpnessThreshold {
		score += sharpnessWeight
	}

	status := StatusInactive
	if score > activeScoreMin {
		status = StatusActive
	}
	return Verdict{
		Status:          status,
		BrightnessLevel: BucketBrightness(p.Mean),
		Score:           score,
	}
}

// BucketBrightness maps a mean intensity onto the five fixed levels.
func BucketBrightness(v float64) BrightnessLevel {
	switch {
	case v > 180:
		return BrightnessVeryHigh
	case v > 140:
		return BrightnessHigh
	case v > 100:
		return BrightnessMedium
	case v > 60:
		return BrightnessLow
	default:
		return BrightnessVeryLow
	}
}

func averageBrightness(candidates []Candidate) float64 {
	var sum float64
	for _, c := range candidates {
		sum += c.Profile.Mean
	}
	return sum / float64(len(candidates))
}

// brightestActive returns the index of the brightest candidate flagged
// active by the score rule.
func brightestActive(states []CarrierState) (int, bool) {
	best := -1
	for i, s := range states {
		if s.Status != StatusActive {
			continue
		}
		if best < 0 || s.Brightness > states[best].Brightness {
			best = i
		}
	}
	return best, best >= 0
}

// byBrightnessDesc returns state indexes ordered brightest-first. Equal
// brightness keeps input order, so the outcome stays deterministic.
func byBrightnessDesc(states []CarrierState) []int {
	order := make([]int, len(states))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return states[order[a]].Brightness > states[order[b]].Brightness
	})
	return order
}
