// Package config loads and validates the gateway's server configuration.
//
// Configuration is merged from defaults, YAML config files, environment
// variables with the EDGEGATE_ prefix, and CLI flags, in increasing order
// of precedence. The result is validated eagerly so the server never
// starts on a half-formed configuration.
//
// Note that this package configures the server process itself (port, data
// directory, policy source, logging). The path policies the gateway
// enforces are a separate, hot-reloadable document handled by the loader
// package.
package config
