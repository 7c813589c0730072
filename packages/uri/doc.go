// Package uri decomposes target URLs for the hitclient handle.
//
// It provides:
//   - Classification of input as absolute (scheme and host) or relative (path/query)
//   - Parsing of absolute URLs into scheme, credentials, host, port, path and query
//   - The canonical State a client holds for its current target
//   - Merging a new URL into an existing State with credential retention/reset
package uri
