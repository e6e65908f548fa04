// Package results provides sinks for sweep Results: a fixed-width text
// table and a SQLite store keyed by run.
package results
