// Package config loads, normalizes, and validates the TOML configuration
// for captiond.
//
// Load resolves the config path (explicit flag, then the user config dir,
// then a project-local captiond.toml), layers file values over Default(),
// expands ~ in all path fields, and validates the result. Missing files are
// not an error; the defaults run standalone.
package config
