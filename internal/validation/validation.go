// Package validation binds request payloads and turns validation failures
// into 400 responses with per-field errors.
package validation
