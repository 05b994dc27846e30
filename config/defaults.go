// Package config provides configuration defaults and utilities
// for the trackrec application.
//
// The defaults reproduce the fixed constants of the collection run: a
// single ZeroMQ reply endpoint on port 5555 that accepts 3000 two-dimensional
// samples and writes them to one file. Every value can be overridden via
// config.yaml or trackrecd flags.
package config

// =============================================================================
// Network Defaults
// =============================================================================

const (
	// DefaultEndpoint is the ZeroMQ endpoint the reply socket binds to.
	// Override via config: listen
	DefaultEndpoint = "tcp://*:5555"

	// Ack is the fixed reply sent after every accepted sample.
	Ack = "ok"

	// DefaultMaxMessageSize bounds a single inbound payload.
	// A two-number JSON array never comes close.
	DefaultMaxMessageSize = 64 * 1024
)

// =============================================================================
// Collection Defaults
// =============================================================================

const (
	// DefaultSteps is the number of request/reply exchanges per run.
	// Override via config: steps
	DefaultSteps = 3000

	// DefaultDim is the number of coordinates carried by every sample.
	// Override via config: dim
	DefaultDim = 2

	// DefaultProgressEvery controls how often the listener logs progress.
	DefaultProgressEvery = 500
)

// =============================================================================
// Output Defaults
// =============================================================================

const (
	// DefaultOutputPath is where the collected matrix is written.
	// The parent directory must already exist.
	// Override via config: output.path
	DefaultOutputPath = "../data/data.gob"

	// DefaultOutputFormat selects the serialization of the matrix.
	// Override via config: output.format
	DefaultOutputFormat = "gob"

	// DefaultCompression is the parquet compression codec.
	// Override via config: output.compression
	DefaultCompression = "zstd"
)

// =============================================================================
// Summary Defaults
// =============================================================================

const (
	// DefaultSketchAccuracy is the relative accuracy of the DDSketch
	// percentiles reported after a run (0.01 = 1% error).
	// Override via config: summary.accuracy
	DefaultSketchAccuracy = 0.01
)

// =============================================================================
// Client Defaults
// =============================================================================

const (
	// DefaultClientTimeoutMs bounds how long trackctl waits for an ack.
	DefaultClientTimeoutMs = 5000
)
