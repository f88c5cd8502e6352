// Package app wires the HTTP application: tracing, metrics, the run store,
// the analysis and health services, the chi router and the http.Server.
//
// # Initialization Flow
//
//	1. Configuration and the logger are created by the caller
//	2. Tracing and Prometheus metrics are initialized
//	3. The SQLite run store is opened when storage is enabled
//	4. Services and handlers are created with their dependencies
//	5. The router and server are configured
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Active
// requests get Server.ShutdownTimeout to complete, then spans are flushed and
// the database is closed. The package never calls os.Exit.
package app
