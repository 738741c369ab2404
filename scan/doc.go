// Package scan drives continuous decode attempts against a live camera
// session and turns accepted decodes into outbound events.
//
// The loop is interval-driven: one decode attempt at most is outstanding at
// any time, stale frames are dropped in favor of the latest, and duplicate
// results are suppressed by a per-loop debounce window. Per-frame misses are
// normal and silent; only unexpected decoder faults reach the error
// callback, and neither stops the loop.
//
// Stop guarantees that no result or error callback runs after it returns,
// and that no attempt is scheduled once the underlying stream is gone.
package scan
