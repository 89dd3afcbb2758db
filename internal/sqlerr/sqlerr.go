// Package sqlerr turns PostgreSQL driver errors into API errors.
//
// Constraint violations and malformed input become 400s with a friendly
// message, missing rows become 404s, and anything else is an opaque 500.
package sqlerr
