// Package config provides centralized configuration management for the GDP
// dashboard. It handles loading configuration from multiple sources,
// validation, and a type-safe API for accessing configuration values.
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// All environment variables follow the pattern GDP_* for namespacing:
//
//	GDP_SERVER_PORT=8080
//	GDP_DATASET_CSV_PATH=data/world_gdp.csv
//	GDP_LOGGING_LEVEL=info
package config
