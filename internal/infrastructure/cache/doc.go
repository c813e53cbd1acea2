// Package cache is the in-process request cache that sits between HTTP
// handlers and upstream calls.
//
// It combines three pieces behind one mutex:
//
//   - an entry store with a per-write TTL and lazy expiration,
//   - an in-flight tracker that collapses concurrent fetches for a key into
//     one upstream call (built on singleflight),
//   - Execute, which reads, joins or fetches as one atomic step per key.
//
// Entries written WithCompensation keep a snapshot of the original value and
// are adjusted on every read for the time elapsed since the write. This is
// used for playback progress, which keeps advancing while the cached player
// state sits in memory.
package cache
