// Package config loads the trackstats configuration.
//
// Values are resolved in order of increasing precedence:
//
//  1. Built-in defaults (Default)
//  2. A YAML file (--config, or trackstats.yaml / configs/trackstats.yaml)
//  3. Environment variables prefixed with TRACKSTATS_
//
// Environment variable names follow the struct layout:
//
//	TRACKSTATS_LOGGING_LEVEL=debug
//	TRACKSTATS_SERVER_PORT=9090
//	TRACKSTATS_SERVER_RATE_LIMIT_RPS=5
//	TRACKSTATS_INPUT_ENCODING=utf8
//	TRACKSTATS_STORAGE_DATABASE_PATH=/var/lib/trackstats/runs.db
//	TRACKSTATS_TRACING_ENABLED=true
//
// The loaded configuration is validated with go-playground/validator and
// invalid values are reported as CONFIG errors.
package config
