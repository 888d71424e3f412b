package domain

import "time"

// Config represents the application configuration. It is built once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Download  DownloadConfig  `mapstructure:"download"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download orchestration configuration
type DownloadConfig struct {
	// Dir is where finished artifacts land
	Dir string `mapstructure:"dir"`

	// ConcurrentLimit bounds the number of simultaneous transfers
	ConcurrentLimit int `mapstructure:"concurrent_limit"`

	// CompletedListLimit is the default page size for completed listings
	CompletedListLimit int `mapstructure:"completed_list_limit"`
}

// ExtractorConfig contains configuration for the yt-dlp boundary
type ExtractorConfig struct {
	Binary       string        `mapstructure:"binary"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// DatabaseConfig contains persistence configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Download: DownloadConfig{
			Dir:                "$HOME/VideoDownloads",
			ConcurrentLimit:    3,
			CompletedListLimit: 10,
		},
		Extractor: ExtractorConfig{
			Binary:       "yt-dlp",
			ProbeTimeout: 30 * time.Second,
			FetchTimeout: 2 * time.Hour,
		},
		Database: DatabaseConfig{
			Path: "$HOME/VideoDownloads/vidfetch.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
