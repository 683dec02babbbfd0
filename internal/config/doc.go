// Package config loads, normalizes, and validates oficina launcher settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files (or YAML when the file extension asks for it),
// and honours the OFICINA_PORT environment override. The Config type
// centralizes every knob the supervisor, packager, and status commands need so
// project, state, and log directories are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical server modes, and clear validation errors.
package config
