package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "screentel"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SCREENTEL"
)

// Loader handles loading configuration from files, environment variables
// and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by the global viper instance so
// command-line flag bindings are honored.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on a dedicated viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from the standard search paths, environment
// variables and defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshalAndValidate()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/screentel")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "screentel"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "screentel"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("ocr.languages", defaults.OCR.Languages)
	l.v.SetDefault("ocr.page_seg_mode", defaults.OCR.PageSegMode)
	l.v.SetDefault("ocr.dpi", defaults.OCR.DPI)

	l.v.SetDefault("analysis.operators", defaults.Analysis.Operators)
	l.v.SetDefault("analysis.brightness_threshold", defaults.Analysis.BrightnessThreshold)
	l.v.SetDefault("analysis.contrast_threshold", defaults.Analysis.ContrastThreshold)
	l.v.SetDefault("analysis.sharpness_threshold", defaults.Analysis.SharpnessThreshold)
	l.v.SetDefault("analysis.tie_threshold", defaults.Analysis.TieThreshold)
	l.v.SetDefault("analysis.edge_low_threshold", defaults.Analysis.EdgeLowThreshold)
	l.v.SetDefault("analysis.edge_high_threshold", defaults.Analysis.EdgeHighThreshold)

	l.v.SetDefault("extract.speed_policy", defaults.Extract.SpeedPolicy)
	l.v.SetDefault("extract.ping_noise_floor", defaults.Extract.PingNoiseFloor)
	l.v.SetDefault("extract.proximity_window", defaults.Extract.ProximityWindow)
	l.v.SetDefault("extract.download_min_mbps", defaults.Extract.DownloadMinMbps)
	l.v.SetDefault("extract.upload_max_mbps", defaults.Extract.UploadMaxMbps)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.pretty", defaults.Output.Pretty)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.uploads_dir", defaults.Server.UploadsDir)
	l.v.SetDefault("server.save_uploads", defaults.Server.SaveUploads)

	l.v.SetDefault("history.enabled", defaults.History.Enabled)
	l.v.SetDefault("history.path", defaults.History.Path)
	l.v.SetDefault("history.limit", defaults.History.Limit)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
	l.v.SetDefault("batch.recursive", defaults.Batch.Recursive)
}

// GetConfigSearchPaths returns the paths where configuration files are
// searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "screentel"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "screentel"))
	}

	paths = append(paths, "/etc/screentel")

	return paths
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile generates a default configuration file.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoaderWithViper(viper.New())
	loader.setDefaults()

	if filename == "" {
		filename = "screentel.yaml"
	}

	return loader.WriteConfigToFile(filename)
}
