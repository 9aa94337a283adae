// Package file provides the TOML-backed configuration store.
//
// Nested tables are flattened to dot-notation keys on load ("push.org")
// and written back as nested tables on save.
package file
