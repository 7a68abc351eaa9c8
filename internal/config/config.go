// Package config provides configuration loading and validation for the
// screentel application.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/extractor"
	"github.com/screentel/screentel/internal/pipeline"
	"github.com/screentel/screentel/internal/profiler"
)

// DefaultConfig returns the configuration with all defaults applied.
func DefaultConfig() Config {
	cls := classifier.DefaultConfig()
	prof := profiler.DefaultConfig()
	ext := extractor.DefaultConfig()

	return Config{
		LogLevel: "info",
		Verbose:  false,
		OCR: OCRConfig{
			Languages:   []string{"chi_sim", "eng"},
			PageSegMode: 6,
			DPI:         0,
		},
		Analysis: AnalysisConfig{
			Operators:           slices.Clone(pipeline.DefaultOperators),
			BrightnessThreshold: cls.BrightnessThreshold,
			ContrastThreshold:   cls.ContrastThreshold,
			SharpnessThreshold:  cls.SharpnessThreshold,
			TieThreshold:        cls.TieThreshold,
			EdgeLowThreshold:    prof.EdgeLowThreshold,
			EdgeHighThreshold:   prof.EdgeHighThreshold,
		},
		Extract: ExtractConfig{
			SpeedPolicy:     string(ext.SpeedPolicy),
			PingNoiseFloor:  ext.PingNoiseFloor,
			ProximityWindow: ext.ProximityWindow,
			DownloadMinMbps: ext.DownloadMinMbps,
			UploadMaxMbps:   ext.UploadMaxMbps,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     16,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
			UploadsDir:      "uploads",
			SaveUploads:     true,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "screentel.db",
			Limit:   50,
		},
		Batch: BatchConfig{
			Workers:         runtime.NumCPU(),
			ContinueOnError: true,
		},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validOutputFormats = []string{"json", "text"}

var validSpeedPolicies = []string{
	string(extractor.SpeedPolicyPositional),
	string(extractor.SpeedPolicyMagnitude),
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (must be one of %v)", c.LogLevel, validLogLevels)
	}
	if len(c.OCR.Languages) == 0 {
		return errors.New("ocr.languages must not be empty")
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("invalid ocr.page_seg_mode %d (must be 0-13)", c.OCR.PageSegMode)
	}
	if len(c.Analysis.Operators) == 0 {
		return errors.New("analysis.operators must not be empty")
	}
	if err := validateThreshold(c.Analysis.BrightnessThreshold, "analysis.brightness_threshold"); err != nil {
		return err
	}
	if err := validateThreshold(c.Analysis.ContrastThreshold, "analysis.contrast_threshold"); err != nil {
		return err
	}
	if err := validateThreshold(c.Analysis.SharpnessThreshold, "analysis.sharpness_threshold"); err != nil {
		return err
	}
	if c.Analysis.EdgeLowThreshold > c.Analysis.EdgeHighThreshold {
		return fmt.Errorf("analysis.edge_low_threshold %.1f exceeds edge_high_threshold %.1f",
			c.Analysis.EdgeLowThreshold, c.Analysis.EdgeHighThreshold)
	}
	if !slices.Contains(validSpeedPolicies, c.Extract.SpeedPolicy) {
		return fmt.Errorf("invalid extract.speed_policy %q (must be one of %v)", c.Extract.SpeedPolicy, validSpeedPolicies)
	}
	if c.Extract.ProximityWindow < 0 {
		return fmt.Errorf("extract.proximity_window must not be negative, got %d", c.Extract.ProximityWindow)
	}
	if !slices.Contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q (must be one of %v)", c.Output.Format, validOutputFormats)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history is enabled")
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1, got %d", c.History.Limit)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	return nil
}

// ToPipelineConfig converts the configuration into a pipeline config.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Operators: c.Analysis.Operators,
		Profiler: profiler.Config{
			EdgeLowThreshold:  c.Analysis.EdgeLowThreshold,
			EdgeHighThreshold: c.Analysis.EdgeHighThreshold,
		},
		Classifier: classifier.Config{
			BrightnessThreshold: c.Analysis.BrightnessThreshold,
			ContrastThreshold:   c.Analysis.ContrastThreshold,
			SharpnessThreshold:  c.Analysis.SharpnessThreshold,
			TieThreshold:        c.Analysis.TieThreshold,
		},
		Extractor: extractor.Config{
			SpeedPolicy:     extractor.SpeedPolicy(c.Extract.SpeedPolicy),
			PingNoiseFloor:  c.Extract.PingNoiseFloor,
			ProximityWindow: c.Extract.ProximityWindow,
			DownloadMinMbps: c.Extract.DownloadMinMbps,
			UploadMaxMbps:   c.Extract.UploadMaxMbps,
		},
	}
}

func validateThreshold(value float64, name string) error {
	if value < 0 {
		return fmt.Errorf("%s must not be negative, got %.2f", name, value)
	}
	return nil
}
