// Package assembler merges extractor and classifier output into the final
// response envelope and produces the validation report for it.
package assembler

import (
	"strings"
	"time"

	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/extractor"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/profiler"
)

// ResponseData is the payload carried by a successful response.
type ResponseData struct {
	ExtractedText  string                   `json:"extracted_text"`
	StructuredData extractor.StructuredData `json:"structured_data"`
}

// ProcessingInfo describes how the record was produced.
type ProcessingInfo struct {
	ImagePath               string  `json:"image_path,omitempty"`
	RequestID               string  `json:"request_id,omitempty"`
	OCRConfidence           float64 `json:"ocr_confidence"`
	VisualAnalysisPerformed bool    `json:"visual_analysis_performed"`
	OperatorsDetected       int     `json:"operators_detected"`
	DurationMs              int64   `json:"duration_ms"`
	ProcessingTime          string  `json:"processing_time"`
}

// DebugInfo carries intermediate results when debug output is requested.
type DebugInfo struct {
	OCR       *ocr.Result                 `json:"ocr_result,omitempty"`
	Profiles  map[string]profiler.Profile `json:"region_profiles,omitempty"`
	Selection *classifier.Selection       `json:"selection,omitempty"`
}

// Response is the JSON envelope returned for every analysis request. Field
// names are part of the external contract and must not change.
type Response struct {
	Success          bool            `json:"success"`
	Data             *ResponseData   `json:"data,omitempty"`
	Error            string          `json:"error,omitempty"`
	ProcessingInfo   *ProcessingInfo `json:"processing_info,omitempty"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
	Debug            *DebugInfo      `json:"debug_info,omitempty"`
	Timestamp        string          `json:"timestamp"`
}

// ValidationReport lists the problems found in a response. The response
// itself is never mutated or discarded; callers receive the best-effort
// record alongside the report.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validation messages. Kept as constants so tests and callers can match
// them exactly.
const (
	ErrExtractionFailed     = "data extraction failed"
	ErrMissingExtractedText = "missing extracted_text field"
	ErrEmptyExtractedText   = "extracted text is empty"
	ErrMissingNetworkInfo   = "missing network_info field"
	ErrMissingSpeedTest     = "missing speed_test field"
	ErrMissingTimestamp     = "missing timestamp field"
)

// Timestamp formats t as ISO-8601 UTC with a Z suffix.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Assemble builds a successful response from the transcribed text and the
// extracted structured data.
func Assemble(text string, data extractor.StructuredData, now time.Time) *Response {
	return &Response{
		Success: true,
		Data: &ResponseData{
			ExtractedText:  text,
			StructuredData: data,
		},
		Timestamp: Timestamp(now),
	}
}

// Failure builds an error response. The message replaces the data payload.
func Failure(msg string, now time.Time) *Response {
	return &Response{
		Success:   false,
		Error:     msg,
		Timestamp: Timestamp(now),
	}
}

// Validate checks the response for required fields. When the upstream
// extraction already failed, a single extraction error is reported and no
// further checks run.
func Validate(r *Response) ValidationReport {
	if r == nil || !r.Success {
		return ValidationReport{Valid: false, Errors: []string{ErrExtractionFailed}}
	}

	var errs []string
	if r.Data == nil {
		errs = append(errs, ErrMissingExtractedText, ErrMissingNetworkInfo, ErrMissingSpeedTest)
	} else if strings.TrimSpace(r.Data.ExtractedText) == "" {
		errs = append(errs, ErrEmptyExtractedText)
	}
	if r.Timestamp == "" {
		errs = append(errs, ErrMissingTimestamp)
	}

	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}
