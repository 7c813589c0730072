// Package cmd implements the hitclient CLI commands using Cobra.
//
// Available commands:
//   - resolve: Initialize a client handle and apply URL updates in order
//   - fetch: Resolve the target and send one request to it
//   - history: List journaled target transitions
//   - bench: Time repeated URL merges on client handles
//   - version: Show hitclient version information
//
// Settings come from a config file, then HITCLIENT_* environment variables,
// then flags, later sources winning.
package cmd
