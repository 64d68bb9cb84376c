// Package config loads, normalizes, and validates stampatlas configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: where merged documents, history, and logs go, how transcripts are
// decoded, how far the matcher escalates, and how reports are rendered.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config
