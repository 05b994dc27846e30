// Package constants provides centralized domain-specific constants
// for the trackrec binaries.
package constants

// =============================================================================
// Output Formats
// =============================================================================

const (
	// FormatGob is the checksummed gob snapshot.
	FormatGob = "gob"

	// FormatParquet is one (step, x, y) row per sample.
	FormatParquet = "parquet"
)

// ValidFormats contains all valid output format values
var ValidFormats = []string{FormatGob, FormatParquet}

// IsValidFormat checks if a format is valid
func IsValidFormat(format string) bool {
	return contains(ValidFormats, format)
}

// =============================================================================
// Parquet Compression
// =============================================================================

const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
	CompressionZstd   = "zstd"
	CompressionLZ4    = "lz4"
	CompressionGzip   = "gzip"
)

// ValidCompressions contains all valid parquet codec names
var ValidCompressions = []string{
	CompressionNone,
	CompressionSnappy,
	CompressionZstd,
	CompressionLZ4,
	CompressionGzip,
}

// IsValidCompression checks if a codec name is valid. The empty string
// selects the default codec.
func IsValidCompression(codec string) bool {
	return codec == "" || contains(ValidCompressions, codec)
}

// =============================================================================
// Log Levels
// =============================================================================

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// ValidLogLevels contains all valid log level names
var ValidLogLevels = []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

// =============================================================================
// Helpers
// =============================================================================

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
