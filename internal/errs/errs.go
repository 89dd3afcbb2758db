// Package errs defines the error shapes returned to API clients.
//
// Every failure that leaves the HTTP layer is an *HTTPError, so the Mini
// App always receives the same JSON structure regardless of where the
// failure happened.
package errs
