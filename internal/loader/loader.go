// Package loader handles configuration file loading and validation.
//
// This package is responsible for:
//   - Loading YAML configuration files
//   - Expanding environment variables
//   - Validating the resulting configuration
package loader

import (
	"fmt"
	"os"

	"github.com/xtxerr/trackrec/internal/constants"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/logging"
	"github.com/xtxerr/trackrec/internal/storage"
	"github.com/xtxerr/trackrec/internal/validation"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func Validate(cfg *Config) error {
	errs := errors.NewValidationErrors()

	if cfg.Listen == "" {
		errs.AddMissing("listen")
	} else if err := validation.ValidateBindEndpoint(cfg.Listen); err != nil {
		errs.AddField("listen", err.Error())
	}
	if cfg.Steps <= 0 {
		errs.AddField("steps", "must be positive")
	}
	if cfg.Dim <= 0 {
		errs.AddField("dim", "must be positive")
	}

	if cfg.Output.Path == "" {
		errs.AddMissing("output.path")
	}
	format, err := storage.ParseFormat(cfg.Output.Format)
	if err != nil {
		errs.Add(errors.Wrap(err, "output.format"))
	}
	if format == storage.FormatParquet {
		if cfg.Dim != 2 {
			errs.AddField("dim", "parquet output requires dim 2")
		}
		if !constants.IsValidCompression(cfg.Output.Compression) {
			errs.AddField("output.compression", fmt.Sprintf("unknown codec %q (valid: %v)",
				cfg.Output.Compression, constants.ValidCompressions))
		}
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs.AddField("logging.level", err.Error())
	}

	if cfg.Summary.Accuracy < 0 || cfg.Summary.Accuracy >= 1 {
		errs.AddField("summary.accuracy", "must be in [0, 1)")
	}

	return errs.Err()
}

// ToPersistMeta converts the output configuration to storage metadata.
func ToPersistMeta(cfg *OutputConfig, runID string) storage.Meta {
	return storage.Meta{
		RunID:       runID,
		Compression: cfg.Compression,
	}
}
