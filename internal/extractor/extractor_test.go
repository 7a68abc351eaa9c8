package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/ocr"
)

var lexicon = []string{"中国移动", "中国联通", "中国电信", "中国广电"}

func newTestExtractor() *Extractor {
	return New(DefaultConfig(), lexicon)
}

func words(texts ...string) []ocr.TextRegion {
	regs := make([]ocr.TextRegion, len(texts))
	for i, t := range texts {
		regs[i] = ocr.TextRegion{Text: t, Confidence: 90}
	}
	return regs
}

func TestExtractSignalStrength(t *testing.T) {
	data := newTestExtractor().Extract("RSRP: -89 RSRQ: -11 SINR: 18", nil, nil)

	sig := data.NetworkInfo.SignalStrength
	require.NotNil(t, sig)
	assert.Equal(t, "-89", sig.RSRP)
	assert.Equal(t, "-11", sig.RSRQ)
	assert.Equal(t, "18", sig.SINR)
}

func TestExtractSignalCaseAndSpacing(t *testing.T) {
	data := newTestExtractor().Extract("rsrp -101\nRSRQ:-13", nil, nil)

	sig := data.NetworkInfo.SignalStrength
	require.NotNil(t, sig)
	assert.Equal(t, "-101", sig.RSRP)
	assert.Equal(t, "-13", sig.RSRQ)
	assert.Empty(t, sig.SINR)
}

func TestExtractFullWidthPunctuation(t *testing.T) {
	// CJK OCR output frequently carries full-width colons; NFKC folds them
	// onto the ASCII patterns.
	data := newTestExtractor().Extract("RSRP： -95 延迟： 34 ms", nil, nil)

	require.NotNil(t, data.NetworkInfo.SignalStrength)
	assert.Equal(t, "-95", data.NetworkInfo.SignalStrength.RSRP)
	assert.Equal(t, "34ms", data.SpeedTest.Ping)
}

func TestExtractNetworkTypeAndLocation(t *testing.T) {
	data := newTestExtractor().Extract("中国移动 4G 114.31/30.52", nil, nil)

	assert.Equal(t, "中国移动", data.NetworkInfo.Operator)
	assert.Equal(t, "4G", data.NetworkInfo.NetworkType)
	assert.Equal(t, "114.31/30.52", data.NetworkInfo.Location)
}

func TestExtractNoSignalLeavesNil(t *testing.T) {
	data := newTestExtractor().Extract("no metrics here", nil, nil)
	assert.Nil(t, data.NetworkInfo.SignalStrength)
	assert.Empty(t, data.NetworkInfo.Operator)
}

func TestExtractPingNoiseFloor(t *testing.T) {
	e := newTestExtractor()

	// 3ms is below the noise floor; the first value above it wins.
	data := e.Extract("3 ms 23 ms 40 ms", nil, nil)
	assert.Equal(t, "23ms", data.SpeedTest.Ping)

	// All below the floor: fall back to the first.
	data = e.Extract("3 ms 5 ms", nil, nil)
	assert.Equal(t, "3ms", data.SpeedTest.Ping)
}

func TestExtractSpeedPositional(t *testing.T) {
	data := newTestExtractor().Extract("45.6 Mbps 12.3 Mbps", nil, nil)

	assert.Equal(t, "45.6Mbps", data.SpeedTest.Download)
	assert.Equal(t, "12.3Mbps", data.SpeedTest.Upload)
}

func TestExtractSpeedSingleToken(t *testing.T) {
	data := newTestExtractor().Extract("87.2 Mbps", nil, nil)

	assert.Equal(t, "87.2Mbps", data.SpeedTest.Download)
	assert.Empty(t, data.SpeedTest.Upload)
}

func TestExtractSpeedMagnitude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpeedPolicy = SpeedPolicyMagnitude
	e := New(cfg, lexicon)

	// Order is reversed on screen; magnitude still assigns the large value
	// to download and the small one to upload.
	data := e.Extract("5.2 Mbps 88.4 Mbps 45.0 Mbps", nil, nil)
	assert.Equal(t, "88.4Mbps", data.SpeedTest.Download)
	assert.Equal(t, "5.2Mbps", data.SpeedTest.Upload)
}

func TestExtractLabeledSpeedsTakePrecedence(t *testing.T) {
	// The labeled figures override the positional reading of the same
	// tokens.
	data := newTestExtractor().Extract("上传: 12.3 Mbps 下载: 45.6 Mbps 延迟: 23 ms", nil, nil)

	assert.Equal(t, "45.6Mbps", data.SpeedTest.Download)
	assert.Equal(t, "12.3Mbps", data.SpeedTest.Upload)
	assert.Equal(t, "23ms", data.SpeedTest.Ping)
}

func TestEnrichSignalFromWords(t *testing.T) {
	// The full-text pass finds nothing; the word pass recovers the value
	// from the neighborhood of the keyword.
	data := newTestExtractor().Extract("", words("信号", "RSRP", "值", "-97"), nil)

	sig := data.NetworkInfo.SignalStrength
	require.NotNil(t, sig)
	assert.Equal(t, "-97", sig.RSRP)
}

func TestEnrichDoesNotOverrideDirectMatch(t *testing.T) {
	// RSRP came from the text pass; the stray -55 near the keyword must not
	// replace it.
	data := newTestExtractor().Extract("RSRP: -89", words("RSRP", "-55"), nil)

	require.NotNil(t, data.NetworkInfo.SignalStrength)
	assert.Equal(t, "-89", data.NetworkInfo.SignalStrength.RSRP)
}

func TestEnrichRespectsProximityWindow(t *testing.T) {
	// The nearest number sits four words away, outside the default window
	// of three.
	data := newTestExtractor().Extract("", words("SINR", "a", "b", "c", "d", "17"), nil)
	assert.Nil(t, data.NetworkInfo.SignalStrength)
}

func TestExtractAttachesSelection(t *testing.T) {
	sel := &classifier.Selection{
		ActiveOperator: "中国移动",
		States: []classifier.CarrierState{
			{Name: "中国移动", Verdict: classifier.Verdict{Status: classifier.StatusActive}, Brightness: 210},
			{Name: "中国联通", Verdict: classifier.Verdict{Status: classifier.StatusInactive}, Brightness: 75},
		},
	}

	data := newTestExtractor().Extract("中国移动 4G", nil, sel)

	assert.Equal(t, "中国移动", data.SpeedTest.ActiveOperator)
	require.Len(t, data.SpeedTest.CarrierStates, 2)
	assert.Equal(t, classifier.StatusActive, data.SpeedTest.CarrierStates[0].Status)
}

func TestExtractNilSelection(t *testing.T) {
	data := newTestExtractor().Extract("中国移动", nil, nil)
	assert.Empty(t, data.SpeedTest.ActiveOperator)
	assert.Empty(t, data.SpeedTest.CarrierStates)
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestExtractor()
	text := "中国移动 4G RSRP: -89 延迟: 23 ms 45.6 Mbps 12.3 Mbps"

	first := e.Extract(text, nil, nil)
	second := e.Extract(text, nil, nil)
	assert.Equal(t, first, second)
}

func TestExtractEmptyLexicon(t *testing.T) {
	e := New(DefaultConfig(), nil)
	data := e.Extract("中国移动 4G", nil, nil)
	assert.Empty(t, data.NetworkInfo.Operator)
	assert.Equal(t, "4G", data.NetworkInfo.NetworkType)
}
