// Package dataprocessing contains the data core of the GDP dashboard: the
// loader for the World Bank wide-format CSV, the reshaper that pivots it
// into the long (country, year, value) table, the metrics calculator that
// derives per-country growth summaries, and a fingerprint-keyed cache over
// the load+reshape pipeline.
//
// Reshape and ComputeMetrics are pure functions over in-memory tables.
// Missing values travel through the whole pipeline as nil pointers and are
// expected outcomes, not errors; the only error kinds are SchemaError
// (required column absent at load/reshape time) and DataIntegrityError
// (duplicate key, an upstream contract violation).
package dataprocessing
