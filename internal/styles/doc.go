// Package styles resolves named subtitle style presets.
//
// Presets live in a TOML file keyed by id; each entry lists only the fields
// it changes relative to the model's default style. Resolve merges preset
// fields onto the defaults, applies caller overrides on top, and validates
// the result. An unknown preset id resolves to the defaults rather than an
// error — callers that need strict existence checks use Has.
package styles
