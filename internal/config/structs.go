package config

// Config represents the complete configuration for the screentel application.
// It covers all commands (analyze, batch, serve, operators) and supports
// loading from configuration files, environment variables, and command-line
// flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// OCR engine configuration
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Carrier detection and classification
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`

	// Field extraction
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Analysis history persistence
	History HistoryConfig `mapstructure:"history" yaml:"history" json:"history"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// OCRConfig contains text recognition settings.
type OCRConfig struct {
	Languages   []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	PageSegMode int      `mapstructure:"page_seg_mode" yaml:"page_seg_mode" json:"page_seg_mode"`
	DPI         int      `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
}

// AnalysisConfig contains carrier region profiling and classification
// settings.
type AnalysisConfig struct {
	// Operators is the carrier lexicon searched for in OCR output.
	Operators []string `mapstructure:"operators" yaml:"operators" json:"operators"`

	BrightnessThreshold float64 `mapstructure:"brightness_threshold" yaml:"brightness_threshold" json:"brightness_threshold"`
	ContrastThreshold   float64 `mapstructure:"contrast_threshold" yaml:"contrast_threshold" json:"contrast_threshold"`
	SharpnessThreshold  float64 `mapstructure:"sharpness_threshold" yaml:"sharpness_threshold" json:"sharpness_threshold"`
	TieThreshold        float64 `mapstructure:"tie_threshold" yaml:"tie_threshold" json:"tie_threshold"`

	EdgeLowThreshold  float64 `mapstructure:"edge_low_threshold" yaml:"edge_low_threshold" json:"edge_low_threshold"`
	EdgeHighThreshold float64 `mapstructure:"edge_high_threshold" yaml:"edge_high_threshold" json:"edge_high_threshold"`
}

// ExtractConfig contains field extraction settings.
type ExtractConfig struct {
	SpeedPolicy     string  `mapstructure:"speed_policy" yaml:"speed_policy" json:"speed_policy"`
	PingNoiseFloor  int     `mapstructure:"ping_noise_floor" yaml:"ping_noise_floor" json:"ping_noise_floor"`
	ProximityWindow int     `mapstructure:"proximity_window" yaml:"proximity_window" json:"proximity_window"`
	DownloadMinMbps float64 `mapstructure:"download_min_mbps" yaml:"download_min_mbps" json:"download_min_mbps"`
	UploadMaxMbps   float64 `mapstructure:"upload_max_mbps" yaml:"upload_max_mbps" json:"upload_max_mbps"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	UploadsDir      string `mapstructure:"uploads_dir" yaml:"uploads_dir" json:"uploads_dir"`
	SaveUploads     bool   `mapstructure:"save_uploads" yaml:"save_uploads" json:"save_uploads"`
}

// HistoryConfig contains analysis history persistence settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" json:"path"`
	Limit   int    `mapstructure:"limit" yaml:"limit" json:"limit"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}
