// Package regions maps raw OCR word regions to a fixed lexicon of target
// labels (the on-screen carrier names).
package regions

import (
	"strings"
	"unicode"

	"github.com/screentel/screentel/internal/ocr"
)

// Match pairs a lexicon label with the OCR region that represents it.
type Match struct {
	Label  string
	Region ocr.TextRegion
}

// Selector matches OCR regions against an immutable label lexicon.
type Selector struct {
	lexicon []string
}

// NewSelector creates a selector for the given lexicon. The slice is copied;
// the selector never mutates it.
func NewSelector(lexicon []string) *Selector {
	return &Selector{lexicon: append([]string(nil), lexicon...)}
}

// Lexicon returns a copy of the configured labels.
func (s *Selector) Lexicon() []string {
	return append([]string(nil), s.lexicon...)
}

// Select scans regions in OCR output order and returns at most one match per
// lexicon label. The first region matching a label wins; later duplicates
// are discarded, so output is deterministic under repeated detections.
// Results are ordered by lexicon position.
func (s *Selector) Select(regs []ocr.TextRegion) []Match {
	byLabel := make(map[string]ocr.TextRegion, len(s.lexicon))
	for _, reg := range regs {
		for _, label := range s.lexicon {
			if _, done := byLabel[label]; done {
				continue
			}
			if matchesLabel(reg.Text, label) {
				byLabel[label] = reg
			}
		}
	}

	matches := make([]Match, 0, len(byLabel))
	for _, label := range s.lexicon {
		if reg, ok := byLabel[label]; ok {
			matches = append(matches, Match{Label: label, Region: reg})
		}
	}
	return matches
}

// matchesLabel tests exact containment first, then a fuzzy variant that
// tolerates OCR garbling the leading glyphs: both sides are stripped to
// alphanumerics and CJK ideographs, and the label is matched with its first
// two characters dropped.
func matchesLabel(text, label string) bool {
	if strings.Contains(text, label) {
		return true
	}
	cleanText := stripToCore(text)
	cleanLabel := []rune(stripToCore(label))
	if len(cleanLabel) <= 2 {
		return false
	}
	return strings.Contains(cleanText, string(cleanLabel[2:]))
}

// stripToCore removes every rune that is neither an ASCII alphanumeric nor a
// CJK ideograph.
func stripToCore(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
