// Package config resolves the settings n8nsync runs with.
//
// Two sources exist: the process environment (Config, which carries the
// secrets - basic auth and the encryption key - that must never be written
// to disk) and an optional n8nsync.toml in the data root (FileConfig, for
// non-secret defaults like the base URL and import thresholds). Commands
// resolve precedence as flag > environment > file.
package config
