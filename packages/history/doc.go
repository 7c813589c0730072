// Package history journals the target transitions of hitclient handles in SQLite.
//
// Every init and SetURL call (accepted or rejected) becomes one row holding the
// redacted before/after targets and what happened to the credentials.
// Passwords are never written.
package history
