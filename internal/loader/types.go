// Package loader - Configuration Types
//
// Defines the YAML configuration structure for trackrecd.
//
//	listen:   ZeroMQ reply endpoint
//	steps:    number of samples to collect
//	dim:      values per sample
//	output:   file path, format, parquet compression
//	logging:  level and format
//	summary:  DDSketch accuracy for the post-run summary
package loader

import (
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/constants"
)

// Config is the root configuration structure for trackrecd.
type Config struct {
	// Listen is the ZeroMQ endpoint of the reply socket.
	// Default: "tcp://*:5555"
	Listen string `yaml:"listen"`

	// Steps is the number of request/reply exchanges.
	// Default: 3000
	Steps int `yaml:"steps"`

	// Dim is the number of values each sample carries.
	// Default: 2
	Dim int `yaml:"dim"`

	// Output configures persistence.
	Output OutputConfig `yaml:"output"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Summary configures the post-run statistics.
	Summary SummaryConfig `yaml:"summary"`
}

// OutputConfig configures where and how the matrix is written.
type OutputConfig struct {
	// Path of the output file. Its directory must exist.
	// Default: "../data/data.gob"
	Path string `yaml:"path"`

	// Format is "gob" or "parquet".
	// Default: "gob"
	Format string `yaml:"format"`

	// Compression is the parquet codec: none, snappy, zstd, lz4, gzip.
	// Default: "zstd"
	Compression string `yaml:"compression"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// JSON switches to JSON output.
	JSON bool `yaml:"json"`
}

// SummaryConfig configures the post-run summary.
type SummaryConfig struct {
	// Accuracy is the DDSketch relative accuracy; 0 disables percentiles.
	Accuracy float64 `yaml:"accuracy"`
}

// DefaultConfig returns a Config with the collector defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: config.DefaultEndpoint,
		Steps:  config.DefaultSteps,
		Dim:    config.DefaultDim,
		Output: OutputConfig{
			Path:        config.DefaultOutputPath,
			Format:      config.DefaultOutputFormat,
			Compression: config.DefaultCompression,
		},
		Logging: LoggingConfig{
			Level: constants.LogLevelInfo,
		},
		Summary: SummaryConfig{
			Accuracy: config.DefaultSketchAccuracy,
		},
	}
}
