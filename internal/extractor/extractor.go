// Package extractor turns transcribed screen text into a validated set of
// domain fields: signal metrics, network generation, coordinates, and
// speed-test figures. Extraction is a pure function of its inputs; running
// it twice on the same text yields identical output.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/ocr"
)

// SpeedPolicy selects how download/upload are disambiguated when no
// directional label accompanies the Mbps tokens.
type SpeedPolicy string

const (
	// SpeedPolicyPositional treats the first Mbps token as download and the
	// second as upload. This is the canonical policy.
	SpeedPolicyPositional SpeedPolicy = "positional"
	// SpeedPolicyMagnitude treats values above the download floor as
	// download candidates (maximum wins) and values below the upload
	// ceiling as upload candidates (minimum wins). Documented alternate;
	// diverges from positional for more than two tokens.
	SpeedPolicyMagnitude SpeedPolicy = "magnitude"
)

// Config holds the extraction knobs. Immutable after construction.
type Config struct {
	// SpeedPolicy picks the Mbps disambiguation fallback.
	SpeedPolicy SpeedPolicy `mapstructure:"speed_policy" yaml:"speed_policy" json:"speed_policy"`
	// PingNoiseFloor filters stray small numbers when several "Nms" tokens
	// are present; the first match above the floor wins.
	PingNoiseFloor int `mapstructure:"ping_noise_floor" yaml:"ping_noise_floor" json:"ping_noise_floor"`
	// ProximityWindow is the word distance searched around a labeled
	// keyword for its numeric value.
	ProximityWindow int `mapstructure:"proximity_window" yaml:"proximity_window" json:"proximity_window"`
	// DownloadMinMbps and UploadMaxMbps bound the magnitude policy.
	DownloadMinMbps float64 `mapstructure:"download_min_mbps" yaml:"download_min_mbps" json:"download_min_mbps"`
	UploadMaxMbps   float64 `mapstructure:"upload_max_mbps" yaml:"upload_max_mbps" json:"upload_max_mbps"`
}

// DefaultConfig returns the standard extraction settings.
func DefaultConfig() Config {
	return Config{
		SpeedPolicy:     SpeedPolicyPositional,
		PingNoiseFloor:  10,
		ProximityWindow: 3,
		DownloadMinMbps: 1,
		UploadMaxMbps:   10,
	}
}

// Extractor applies the fixed pattern table to transcribed text. All state
// is set at construction and read-only afterwards, so one Extractor may
// serve concurrent requests.
type Extractor struct {
	cfg     Config
	lexicon []string

	rsrpRe        *regexp.Regexp
	rsrqRe        *regexp.Regexp
	sinrRe        *regexp.Regexp
	networkTypeRe *regexp.Regexp
	locationRe    *regexp.Regexp
	pingRe        *regexp.Regexp
	mbpsRe        *regexp.Regexp
	downloadRe    *regexp.Regexp
	uploadRe      *regexp.Regexp
	pingLabelRe   *regexp.Regexp
	operatorRe    *regexp.Regexp
	numberRe      *regexp.Regexp
}

// New compiles the pattern table for the given lexicon of carrier names.
func New(cfg Config, lexicon []string) *Extractor {
	quoted := make([]string, len(lexicon))
	for i, op := range lexicon {
		quoted[i] = regexp.QuoteMeta(op)
	}
	operatorPattern := "$^" // matches nothing when the lexicon is empty
	if len(quoted) > 0 {
		operatorPattern = "(" + strings.Join(quoted, "|") + ")"
	}

	return &Extractor{
		cfg:           cfg,
		lexicon:       append([]string(nil), lexicon...),
		rsrpRe:        regexp.MustCompile(`(?i)RSRP[:\s]*(-?\d+)`),
		rsrqRe:        regexp.MustCompile(`(?i)RSRQ[:\s]*(-?\d+)`),
		sinrRe:        regexp.MustCompile(`(?i)SINR[:\s]*(-?\d+)`),
		networkTypeRe: regexp.MustCompile(`(2G|3G|4G|5G)`),
		locationRe:    regexp.MustCompile(`(\d+\.\d+)/(\d+\.\d+)`),
		pingRe:        regexp.MustCompile(`(\d+)\s*ms`),
		mbpsRe:        regexp.MustCompile(`(\d+\.?\d*)\s*Mbps`),
		downloadRe:    regexp.MustCompile(`下载[:\s]*?(\d+\.?\d*)\s*Mbps`),
		uploadRe:      regexp.MustCompile(`上传[:\s]*?(\d+\.?\d*)\s*Mbps`),
		pingLabelRe:   regexp.MustCompile(`延迟[:\s]*?(\d+)\s*ms`),
		operatorRe:    regexp.MustCompile(operatorPattern),
		numberRe:      regexp.MustCompile(`-?\d+`),
	}
}

// Extract runs the full pattern table over the transcribed text, enriches
// missing signal fields from the word sequence, and attaches the carrier
// selection when one is available. Text is NFKC-normalized first so
// full-width punctuation from CJK OCR output matches the ASCII patterns.
func (e *Extractor) Extract(text string, words []ocr.TextRegion, sel *classifier.Selection) StructuredData {
	normalized := norm.NFKC.String(text)

	network := e.extractNetworkInfo(normalized)
	network = mergeNetworkInfo(network, e.enrichSignalFromWords(network, words))

	speed := e.extractSpeedTest(normalized)
	speed = mergeSpeedTest(speed, e.labeledSpeedInfo(normalized))
	speed = mergeSpeedTest(speed, selectionSpeedInfo(sel))

	return StructuredData{NetworkInfo: network, SpeedTest: speed}
}

// extractNetworkInfo applies the base pattern table for network fields.
func (e *Extractor) extractNetworkInfo(text string) NetworkInfo {
	info := NetworkInfo{}

	signal := SignalStrength{}
	if m := e.rsrpRe.FindStringSubmatch(text); m != nil {
		signal.RSRP = m[1]
	}
	if m := e.rsrqRe.FindStringSubmatch(text); m != nil {
		signal.RSRQ = m[1]
	}
	if m := e.sinrRe.FindStringSubmatch(text); m != nil {
		signal.SINR = m[1]
	}
	if !signal.Empty() {
		info.SignalStrength = &signal
	}

	if m := e.networkTypeRe.FindStringSubmatch(text); m != nil {
		info.NetworkType = m[1]
	}
	if m := e.locationRe.FindStringSubmatch(text); m != nil {
		info.Location = m[1] + "/" + m[2]
	}
	if op := e.operatorRe.FindString(text); op != "" {
		info.Operator = op
	}
	return info
}

// extractSpeedTest applies the base ping and Mbps patterns with the
// configured fallback policy.
func (e *Extractor) extractSpeedTest(text string) SpeedTest {
	speed := SpeedTest{}

	if ping, ok := e.pickPing(text); ok {
		speed.Ping = ping
	}

	tokens := e.mbpsRe.FindAllStringSubmatch(text, -1)
	switch e.cfg.SpeedPolicy {
	case SpeedPolicyMagnitude:
		speed.Download, speed.Upload = e.speedByMagnitude(tokens)
	default:
		speed.Download, speed.Upload = speedByPosition(tokens)
	}
	return speed
}

// pickPing returns the first "Nms" match above the noise floor, falling
// back to the first match when none exceeds it.
func (e *Extractor) pickPing(text string) (string, bool) {
	matches := e.pingRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	for _, m := range matches {
		if v, err := strconv.Atoi(m[1]); err == nil && v > e.cfg.PingNoiseFloor {
			return m[1] + "ms", true
		}
	}
	return matches[0][1] + "ms", true
}

// speedByPosition treats the first Mbps token as download, the second as
// upload.
func speedByPosition(tokens [][]string) (download, upload string) {
	if len(tokens) >= 1 {
		download = tokens[0][1] + "Mbps"
	}
	if len(tokens) >= 2 {
		upload = tokens[1][1] + "Mbps"
	}
	return download, upload
}

// speedByMagnitude takes the maximum token above the download floor as
// download and the minimum token below the upload ceiling as upload.
func (e *Extractor) speedByMagnitude(tokens [][]string) (download, upload string) {
	dlIdx, ulIdx := -1, -1
	var dlVal, ulVal float64
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok[1], 64)
		if err != nil {
			continue
		}
		if v > e.cfg.DownloadMinMbps && (dlIdx < 0 || v > dlVal) {
			dlIdx, dlVal = i, v
		}
		if v < e.cfg.UploadMaxMbps && (ulIdx < 0 || v < ulVal) {
			ulIdx, ulVal = i, v
		}
	}
	if dlIdx >= 0 {
		download = tokens[dlIdx][1] + "Mbps"
	}
	if ulIdx >= 0 {
		upload = tokens[ulIdx][1] + "Mbps"
	}
	return download, upload
}

// labeledSpeedInfo extracts figures anchored to their directional labels.
// These take precedence over the positional/magnitude fallback via the
// merge.
func (e *Extractor) labeledSpeedInfo(text string) SpeedTest {
	enh := SpeedTest{}
	if m := e.downloadRe.FindStringSubmatch(text); m != nil {
		enh.Download = m[1] + "Mbps"
	}
	if m := e.uploadRe.FindStringSubmatch(text); m != nil {
		enh.Upload = m[1] + "Mbps"
	}
	if m := e.pingLabelRe.FindStringSubmatch(text); m != nil {
		enh.Ping = m[1] + "ms"
	}
	return enh
}

// enrichSignalFromWords fills signal fields the full-text pass missed by
// searching the word neighborhood of the metric keyword. Fields already
// extracted are left untouched: a direct pattern match is more trustworthy
// than a nearby stray number.
func (e *Extractor) enrichSignalFromWords(base NetworkInfo, words []ocr.TextRegion) NetworkInfo {
	if len(words) == 0 {
		return NetworkInfo{}
	}
	have := SignalStrength{}
	if base.SignalStrength != nil {
		have = *base.SignalStrength
	}

	found := SignalStrength{}
	for i, w := range words {
		upper := strings.ToUpper(w.Text)
		switch {
		case have.RSRP == "" && found.RSRP == "" && strings.Contains(upper, "RSRP"):
			if n, ok := e.findNearbyNumber(words, i); ok {
				found.RSRP = n
			}
		case have.RSRQ == "" && found.RSRQ == "" && strings.Contains(upper, "RSRQ"):
			if n, ok := e.findNearbyNumber(words, i); ok {
				found.RSRQ = n
			}
		case have.SINR == "" && found.SINR == "" && strings.Contains(upper, "SINR"):
			if n, ok := e.findNearbyNumber(words, i); ok {
				found.SINR = n
			}
		}
	}
	if found.Empty() {
		return NetworkInfo{}
	}
	return NetworkInfo{SignalStrength: &found}
}

// findNearbyNumber searches word positions [i-window, i+window], excluding
// i, in ascending order and returns the first token containing an integer
// (sign included).
func (e *Extractor) findNearbyNumber(words []ocr.TextRegion, idx int) (string, bool) {
	start := idx - e.cfg.ProximityWindow
	if start < 0 {
		start = 0
	}
	end := idx + e.cfg.ProximityWindow
	if end > len(words)-1 {
		end = len(words) - 1
	}
	for i := start; i <= end; i++ {
		if i == idx {
			continue
		}
		if n := e.numberRe.FindString(strings.TrimSpace(words[i].Text)); n != "" {
			return n, true
		}
	}
	return "", false
}

// selectionSpeedInfo lifts the classifier output into the speed-test block:
// the active label and the full per-carrier state list are attached
// verbatim.
func selectionSpeedInfo(sel *classifier.Selection) SpeedTest {
	if sel == nil {
		return SpeedTest{}
	}
	return SpeedTest{
		ActiveOperator: sel.ActiveOperator,
		CarrierStates:  sel.States,
	}
}
