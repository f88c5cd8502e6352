// Package http implements the HTTP handlers of the trackstats API. Handlers
// only parse requests and shape responses; every pipeline decision lives in
// the services package.
//
// # Routes
//
//	POST /api/v1/analyses       upload a catalog file and run the pipeline
//	GET  /api/v1/analyses       list stored runs, newest first (?limit=)
//	GET  /api/v1/analyses/{id}  fetch one stored run
//	POST /api/v1/diagnostics    upload a catalog file and inspect it only
//	GET  /healthz, /readyz      liveness and readiness
//
// Uploads are multipart forms carrying the catalog in a field named file,
// as .csv, .txt or .xlsx. Failures are answered with RFC 7807 problem details
// written by errors.ErrorHandler.
package http
