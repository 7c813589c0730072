// Package bench measures how long target resolution takes on a client handle.
//
// A run replays a list of SetURL inputs, absolute or relative, against one
// handle per worker and records each merge in an HDR histogram. Rejected
// inputs count as errors. Runs can be paced with a rate limit and bounded
// by iteration count or duration.
package bench
