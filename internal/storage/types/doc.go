// Package types defines the core data types used throughout the collector.
//
// Key types:
//   - Buffer: the preallocated (dim, steps) sample matrix filled by the listener
//   - Matrix: the frozen result handed to persistence
//   - Sample: one decoded coordinate tuple
package types
