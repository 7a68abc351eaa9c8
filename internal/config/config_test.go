package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"chi_sim", "eng"}, cfg.OCR.Languages)
	assert.Equal(t, []string{"中国移动", "中国联通", "中国电信", "中国广电"}, cfg.Analysis.Operators)
	assert.InDelta(t, 50.0, cfg.Analysis.BrightnessThreshold, 0.001)
	assert.InDelta(t, 30.0, cfg.Analysis.ContrastThreshold, 0.001)
	assert.InDelta(t, 100.0, cfg.Analysis.SharpnessThreshold, 0.001)
	assert.Equal(t, "positional", cfg.Extract.SpeedPolicy)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 16, cfg.Server.MaxUploadMB)
	assert.Equal(t, 50, cfg.History.Limit)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "log_level",
		},
		{
			name:    "empty languages",
			mutate:  func(c *Config) { c.OCR.Languages = nil },
			wantErr: "ocr.languages",
		},
		{
			name:    "page seg mode out of range",
			mutate:  func(c *Config) { c.OCR.PageSegMode = 14 },
			wantErr: "page_seg_mode",
		},
		{
			name:    "empty operators",
			mutate:  func(c *Config) { c.Analysis.Operators = nil },
			wantErr: "analysis.operators",
		},
		{
			name:    "negative brightness threshold",
			mutate:  func(c *Config) { c.Analysis.BrightnessThreshold = -1 },
			wantErr: "brightness_threshold",
		},
		{
			name:    "inverted edge thresholds",
			mutate:  func(c *Config) { c.Analysis.EdgeLowThreshold = 200 },
			wantErr: "edge_low_threshold",
		},
		{
			name:    "unknown speed policy",
			mutate:  func(c *Config) { c.Extract.SpeedPolicy = "widest" },
			wantErr: "speed_policy",
		},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "output.format",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "history enabled without path",
			mutate:  func(c *Config) { c.History.Enabled = true; c.History.Path = "" },
			wantErr: "history.path",
		},
		{
			name:    "zero batch workers",
			mutate:  func(c *Config) { c.Batch.Workers = 0 },
			wantErr: "batch.workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Operators = []string{"中国电信"}
	cfg.Analysis.BrightnessThreshold = 60
	cfg.Extract.SpeedPolicy = "magnitude"

	pc := cfg.ToPipelineConfig()
	assert.Equal(t, []string{"中国电信"}, pc.Operators)
	assert.InDelta(t, 60.0, pc.Classifier.BrightnessThreshold, 0.001)
	assert.Equal(t, "magnitude", string(pc.Extractor.SpeedPolicy))
	assert.InDelta(t, 50.0, pc.Profiler.EdgeLowThreshold, 0.001)
	assert.InDelta(t, 150.0, pc.Profiler.EdgeHighThreshold, 0.001)
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Operators = []string{"中国移动", "中国联通"}
	cfg.Server.Port = 9090

	raw, err := yaml.Marshal(&cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(raw, &back))
	assert.Equal(t, cfg, back)
}
