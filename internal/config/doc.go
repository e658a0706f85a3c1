// Package config loads, normalizes, and validates labbook configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// LABBOOK_SHEET_TOKEN. The Config type centralizes every knob the CLI needs,
// allowing notebook/output directories and external collaborator endpoints to
// be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
