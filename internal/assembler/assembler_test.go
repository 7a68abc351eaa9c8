package assembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screentel/screentel/internal/extractor"
)

func TestTimestampUTC(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	ts := Timestamp(time.Date(2024, 3, 5, 20, 30, 0, 0, loc))
	assert.Equal(t, "2024-03-05T12:30:00Z", ts)
}

func TestAssembleSuccess(t *testing.T) {
	data := extractor.StructuredData{}
	data.NetworkInfo.Operator = "中国移动"

	resp := Assemble("中国移动 4G", data, time.Now())
	require.NotNil(t, resp.Data)
	assert.True(t, resp.Success)
	assert.Equal(t, "中国移动 4G", resp.Data.ExtractedText)
	assert.Equal(t, "中国移动", resp.Data.StructuredData.NetworkInfo.Operator)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestValidate(t *testing.T) {
	now := time.Now()

	t.Run("valid response", func(t *testing.T) {
		rep := Validate(Assemble("some text", extractor.StructuredData{}, now))
		assert.True(t, rep.Valid)
		assert.Empty(t, rep.Errors)
	})

	t.Run("failed extraction short-circuits", func(t *testing.T) {
		rep := Validate(Failure("ocr error", now))
		assert.False(t, rep.Valid)
		assert.Equal(t, []string{ErrExtractionFailed}, rep.Errors)
	})

	t.Run("empty extracted text", func(t *testing.T) {
		rep := Validate(Assemble("   ", extractor.StructuredData{}, now))
		assert.False(t, rep.Valid)
		assert.Equal(t, []string{ErrEmptyExtractedText}, rep.Errors)
	})

	t.Run("missing data payload", func(t *testing.T) {
		rep := Validate(&Response{Success: true, Timestamp: Timestamp(now)})
		assert.False(t, rep.Valid)
		assert.Contains(t, rep.Errors, ErrMissingExtractedText)
		assert.Contains(t, rep.Errors, ErrMissingNetworkInfo)
		assert.Contains(t, rep.Errors, ErrMissingSpeedTest)
	})

	t.Run("missing timestamp", func(t *testing.T) {
		resp := Assemble("text", extractor.StructuredData{}, now)
		resp.Timestamp = ""
		rep := Validate(resp)
		assert.False(t, rep.Valid)
		assert.Equal(t, []string{ErrMissingTimestamp}, rep.Errors)
	})

	t.Run("nil response", func(t *testing.T) {
		rep := Validate(nil)
		assert.False(t, rep.Valid)
	})
}
