// Package output renders client targets, transitions, journal entries and
// responses.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - TAP: Test Anything Protocol, one test point per transition
//
// Passwords are always rendered redacted. Formatters that accumulate results
// write them on Flush.
package output
