package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screentel/screentel/internal/ocr"
)

var carriers = []string{"中国移动", "中国联通", "中国电信"}

func region(text string, x int) ocr.TextRegion {
	return ocr.TextRegion{Text: text, Box: ocr.Box{X: x, Y: 10, W: 80, H: 30}, Confidence: 90}
}

func TestSelectExactMatches(t *testing.T) {
	s := NewSelector(carriers)

	matches := s.Select([]ocr.TextRegion{
		region("中国联通", 200),
		region("中国移动", 20),
		region("RSRP:", 400),
	})

	require.Len(t, matches, 2)
	// Output follows lexicon order, not OCR order.
	assert.Equal(t, "中国移动", matches[0].Label)
	assert.Equal(t, 20, matches[0].Region.Box.X)
	assert.Equal(t, "中国联通", matches[1].Label)
}

func TestSelectFirstRegionWinsPerLabel(t *testing.T) {
	s := NewSelector(carriers)

	matches := s.Select([]ocr.TextRegion{
		region("中国移动", 20),
		region("中国移动", 300),
	})

	require.Len(t, matches, 1)
	assert.Equal(t, 20, matches[0].Region.Box.X)
}

func TestSelectContainment(t *testing.T) {
	// Labels embedded in longer OCR fragments still match.
	s := NewSelector(carriers)

	matches := s.Select([]ocr.TextRegion{region("[中国电信 4G]", 50)})

	require.Len(t, matches, 1)
	assert.Equal(t, "中国电信", matches[0].Label)
}

func TestSelectFuzzyGarbledPrefix(t *testing.T) {
	// OCR often mangles the leading glyphs of a CJK label; the trailing
	// characters are enough to recover the match.
	s := NewSelector(carriers)

	tests := []struct {
		text string
		want string
	}{
		{"国移动", "中国移动"},
		{"xx联通", "中国联通"},
		{"〇〇电信", "中国电信"},
	}
	for _, tt := range tests {
		matches := s.Select([]ocr.TextRegion{region(tt.text, 0)})
		require.Len(t, matches, 1, "text %q", tt.text)
		assert.Equal(t, tt.want, matches[0].Label)
	}
}

func TestSelectShortLabelNeedsExactMatch(t *testing.T) {
	// Two-character labels have nothing left after the fuzzy prefix drop,
	// so only containment matches.
	s := NewSelector([]string{"4G"})

	assert.Len(t, s.Select([]ocr.TextRegion{region("4G", 0)}), 1)
	assert.Empty(t, s.Select([]ocr.TextRegion{region("G", 0)}))
}

func TestSelectNoMatches(t *testing.T) {
	s := NewSelector(carriers)
	assert.Empty(t, s.Select([]ocr.TextRegion{region("RSRP: -89", 0), region("45.6 Mbps", 100)}))
	assert.Empty(t, s.Select(nil))
}

func TestLexiconIsCopied(t *testing.T) {
	src := []string{"中国移动"}
	s := NewSelector(src)
	src[0] = "mutated"

	lex := s.Lexicon()
	require.Len(t, lex, 1)
	assert.Equal(t, "中国移动", lex[0])

	lex[0] = "mutated again"
	assert.Equal(t, "中国移动", s.Lexicon()[0])
}
