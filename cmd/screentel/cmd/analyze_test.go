package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/extractor"
)

func sampleResponse() *assembler.Response {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := extractor.StructuredData{
		NetworkInfo: extractor.NetworkInfo{
			Operator:    "中国移动",
			NetworkType: "4G",
			SignalStrength: &extractor.SignalStrength{
				RSRP: "-89", RSRQ: "-11", SINR: "18",
			},
		},
		SpeedTest: extractor.SpeedTest{
			Ping:           "23ms",
			Download:       "45.6Mbps",
			Upload:         "12.3Mbps",
			ActiveOperator: "中国移动",
			CarrierStates: []classifier.CarrierState{
				{Name: "中国移动", Verdict: classifier.Verdict{Status: classifier.StatusActive}, Brightness: 210},
				{Name: "中国联通", Verdict: classifier.Verdict{Status: classifier.StatusInactive}, Brightness: 72},
			},
		},
	}
	return assembler.Assemble("RSRP: -89", data, now)
}

func TestFormatResponseJSON(t *testing.T) {
	out, err := formatResponse(sampleResponse(), outputFormatJSON, false)
	require.NoError(t, err)

	assert.Contains(t, out, `"active_operator":"中国移动"`)
	assert.Contains(t, out, `"ping":"23ms"`)
	assert.True(t, out[len(out)-1] == '\n')
}

func TestFormatResponseJSONPretty(t *testing.T) {
	out, err := formatResponse(sampleResponse(), outputFormatJSON, true)
	require.NoError(t, err)

	assert.Contains(t, out, "  \"success\": true")
}

func TestFormatResponseText(t *testing.T) {
	out, err := formatResponse(sampleResponse(), outputFormatText, false)
	require.NoError(t, err)

	assert.Contains(t, out, "Operator:      中国移动")
	assert.Contains(t, out, "RSRP=-89 RSRQ=-11 SINR=18")
	assert.Contains(t, out, "Ping:          23ms")
	assert.Contains(t, out, "中国联通")
}

func TestFormatResponseTextFailure(t *testing.T) {
	resp := assembler.Failure("text recognition failed", time.Now())

	out, err := formatResponse(resp, outputFormatText, false)
	require.NoError(t, err)
	assert.Contains(t, out, "analysis failed: text recognition failed")
}

func TestWriteOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, writeOutput("{}\n", path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(content))
}
