// Package http provides the serving surface of the gateway: a chi router
// that runs every request through the authorization engine and serves
// static files from a sandboxed root.
//
// The package owns the boundary decision of mapping deny reasons to wire
// status codes:
//
//   - not_found maps to 404, indistinguishable from a missing file
//   - missing, expired or bad signatures map to 402
//   - malformed tokens and range violations map to 400
//
// File bytes are served with http.ServeContent, which honors Range and
// HEAD on its own; the engine has already checked any signed range
// constraint by the time a handler runs. Directory listings are rendered
// for policies with autoindex enabled, with entry links signed under the
// same policy.
//
// Prometheus metrics are exported on /-/metrics, optionally behind a
// bearer token.
package http
