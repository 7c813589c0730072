// Package http provides the hitclient handle.
//
// A Client owns exactly one target (a uri.State) plus its transport settings:
//   - Configuration validation (a raw URL, or separate host/path fields)
//   - Target re-resolution with SetURL, keeping credentials on relative
//     updates and dropping them on absolute updates that carry none
//   - Credential accessors returning copies
//   - Request execution against the current target with Basic or Digest auth
//
// A Client is not safe for concurrent use; callers serialize access.
package http
