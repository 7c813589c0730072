// Package config handles configuration loading and management for hitclient.
//
// It provides functionality for:
//   - Loading configuration from JSON (.hitclient.json) or YAML (.hitclient.yaml) files
//   - Validating files against an embedded JSON schema
//   - Expanding ${VAR} references from the environment
//   - Default configuration values and merging of flag overrides
package config
