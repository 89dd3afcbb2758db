// Package middleware holds the cross-cutting request handling of the API:
// CORS and preflight, request ids, request-scoped logging, New Relic
// tracing, Telegram identity resolution, rate limiting and the error funnel.
package middleware
