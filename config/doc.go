// Package config resolves blogmesh runtime settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// environment variables. The CLI applies its flags last. Validate reports
// missing credentials before any stage runs, and the New* helpers turn a
// validated Config into the model, searcher, logger and prompt store used by
// a run.
package config
