// Package config resolves the settings of a report run.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//	1. Built-in defaults (Default / DefaultAt)
//	2. An override file (YAML, or the flat JSON used by older deployments)
//	3. Environment variables prefixed WEEKLY_, optionally from a .env file
//
// # Environment Variables
//
//	WEEKLY_INPUT_FILE=raw_data.csv
//	WEEKLY_OUTPUT_FILE=out/weekly.xlsx
//	WEEKLY_NUMERIC_COLUMNS=Sales,Units,Revenue
//	WEEKLY_LOGGING_LEVEL=debug
//	WEEKLY_AUDIT_DB_PATH=runs.db
//
// # Column Roles
//
// The date column and the numeric columns are critical: a row missing any of
// them is dropped during cleaning. The product, region and revenue columns
// drive the leaderboards and may be left empty to disable them.
//
// # Usage
//
//	cfg, err := config.Load("config.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
