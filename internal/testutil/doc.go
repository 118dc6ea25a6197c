// Package testutil contains fluent builders used across tests to construct
// session records and stage events without repeating field-by-field setup.
// Not intended for production usage.
package testutil
