// Package config loads, normalizes, and validates defaultpoetry settings.
//
// It supplies repository defaults (the house development dependencies,
// commit messages and template selection), expands user paths (including
// tilde shortcuts), reads TOML files, and honours the DEFAULTPOETRY_TEMPLATES
// environment override for the templates directory.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
