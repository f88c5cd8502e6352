// Package store keeps the history of pipeline runs in SQLite.
package store
