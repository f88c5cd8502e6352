// Package services holds the application logic shared by the CLI and the
// HTTP API.
//
// AnalysisService runs the pipeline over a raw catalog table: diagnose,
// clean, analyze, then persist the run. Each stage gets its own span and
// duration metric, and every log record carries the run id as trace_id.
// HealthService reports liveness and readiness of the process.
package services
