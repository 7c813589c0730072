// Package env handles environment variables for hitclient configuration.
//
// It provides functionality for:
//   - Loading .env files into the process environment
//   - Expanding ${VAR} references in configuration values
//   - Reading typed HITCLIENT_* defaults for CLI flags
package env
