package cache

import (
	"bytes"
	"encoding/json"
	"time"
)

// entry is a single cached value. snapshot is only set for entries written
// with a Compensator and is never handed out directly. fetchedAt is when the
// fetch that produced value started; for a plain Set it equals storedAt.
type entry struct {
	value       any
	storedAt    time.Time
	fetchedAt   time.Time
	ttl         time.Duration
	snapshot    any
	compensator Compensator
}

func (e *entry) valid(now time.Time) bool {
	return now.Sub(e.storedAt) <= e.ttl
}

// store is the key->entry map. It is not safe for concurrent use; Cache
// serialises every call under its mutex.
type store struct {
	entries map[string]*entry
}

func newStore() *store {
	return &store{entries: make(map[string]*entry)}
}

// read returns the value for key, deleting it first if it has expired.
// expired reports whether a lazy expiration happened.
func (s *store) read(key string, now time.Time) (value any, ok bool, expired bool) {
	e, found := s.entries[key]
	if !found {
		return nil, false, false
	}
	if !e.valid(now) {
		delete(s.entries, key)
		return nil, false, true
	}
	if e.compensator == nil || e.snapshot == nil {
		return e.value, true, false
	}
	adjusted, ok := e.compensator.Compensate(e.snapshot, now.Sub(e.storedAt), now)
	if !ok {
		return e.value, true, false
	}
	return adjusted, true, false
}

func (s *store) write(key string, value any, ttl time.Duration, now time.Time, comp Compensator) {
	s.writeFetched(key, value, ttl, now, now, comp)
}

// writeFetched stores the result of a fetch that started at fetchedAt.
func (s *store) writeFetched(key string, value any, ttl time.Duration, now, fetchedAt time.Time, comp Compensator) {
	e := &entry{value: value, storedAt: now, fetchedAt: fetchedAt, ttl: ttl}
	if comp != nil {
		e.compensator = comp
		e.snapshot = cloneValue(value)
	}
	s.entries[key] = e
}

// fetchedAfter reports whether key holds an entry whose data is newer than a
// fetch started at t.
func (s *store) fetchedAfter(key string, t time.Time) bool {
	e, ok := s.entries[key]
	return ok && e.fetchedAt.After(t)
}

func (s *store) delete(key string) {
	delete(s.entries, key)
}

func (s *store) reset() {
	s.entries = make(map[string]*entry)
}

// sweep removes every entry that is no longer valid and returns how many
// were dropped.
func (s *store) sweep(now time.Time) int {
	n := 0
	for k, e := range s.entries {
		if !e.valid(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

func (s *store) len() int {
	return len(s.entries)
}

// cloneValue copies byte-backed values so later mutation of the caller's
// slice cannot alter the snapshot. Other values are kept as-is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return bytes.Clone(t)
	case json.RawMessage:
		return json.RawMessage(bytes.Clone(t))
	default:
		return v
	}
}
