// Package storage persists a completed collection run.
//
// Architecture:
//
//	┌─────────────┐     ┌─────────────┐     ┌──────────────────┐
//	│  Listener   │────▶│   Matrix    │────▶│ Persist (once)   │
//	│  (Collect)  │     │  (frozen)   │     ├──────────────────┤
//	└─────────────┘     └─────────────┘     │ gob snapshot     │
//	                                        │ parquet rows     │
//	                                        └──────────────────┘
//	                                                 │
//	                                                 ▼
//	                                        ┌──────────────────┐
//	                                        │ Query (DuckDB)   │
//	                                        └──────────────────┘
//
// Persist runs exactly once per run, after the last reply. It never creates
// directories; a missing or read-only target directory is an error.
package storage
