// Package config provides centralized configuration management for the
// retail cleaning pipeline. Configuration is read once at process start,
// validated, and passed explicitly into every component; no stage reads
// ambient state.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern RETAIL_* for namespacing:
//
//	RETAIL_CLEANING_MIN_UNIT_PRICE=0.01
//	RETAIL_DATASET_WORKBOOK_FILE=data/raw/online_retail_II.xlsx
//	RETAIL_LOGGING_LEVEL=debug
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
