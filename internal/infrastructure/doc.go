// Package infrastructure wires the process-wide logging, metrics and
// tracing used by every other package.
package infrastructure
