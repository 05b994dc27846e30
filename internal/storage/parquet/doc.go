// Package parquet implements Parquet file reading and writing for sample
// matrices.
//
// The package provides:
//   - SampleWriter/SampleReader for (step, x, y) rows
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//   - Conversion between a 2-row matrix and Parquet rows
package parquet
