package cache

import (
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultPendingTTL is the age after which an unsettled fetch is treated as
// orphaned and a new attempt for the same key may start.
const DefaultPendingTTL = 30 * time.Second

var errNoPendingCall = errors.New("cache: no pending call to join")

// pendingCall is the bookkeeping for one in-flight fetch. The joinable
// handle itself lives in the singleflight group under the same key.
type pendingCall struct {
	key       string
	startedAt time.Time
	gen       uint64
}

// tracker deduplicates concurrent fetches per key. Like store it relies on
// the Cache mutex; calls and group are kept in step by forgetting the group
// key whenever a record is dropped.
type tracker struct {
	group singleflight.Group
	calls map[string]pendingCall
	// orphans holds calls purged by the staleness ceiling, keyed by
	// generation, so their late result can still be stored.
	orphans map[uint64]pendingCall
	seq     uint64
}

func newTracker() *tracker {
	return &tracker{
		calls:   make(map[string]pendingCall),
		orphans: make(map[uint64]pendingCall),
	}
}

func (t *tracker) hasPending(key string) bool {
	_, ok := t.calls[key]
	return ok
}

// register starts fn as the pending call for key and returns its handle and
// generation. fn receives the generation so it can release itself. An
// existing record for key is overwritten.
func (t *tracker) register(key string, now time.Time, fn func(gen uint64) (any, error)) (<-chan singleflight.Result, uint64) {
	t.group.Forget(key)
	t.seq++
	gen := t.seq
	t.calls[key] = pendingCall{key: key, startedAt: now, gen: gen}
	ch := t.group.DoChan(key, func() (any, error) { return fn(gen) })
	return ch, gen
}

// join returns the handle of the pending call for key.
func (t *tracker) join(key string) (<-chan singleflight.Result, bool) {
	if !t.hasPending(key) {
		return nil, false
	}
	// The record guarantees the group still holds the call, so this never
	// starts a new one.
	ch := t.group.DoChan(key, func() (any, error) { return nil, errNoPendingCall })
	return ch, true
}

// release drops the record for a settled call. It reports whether the call
// was still owned by the tracker (live or orphaned) and when it started; a
// call that was cleared in the meantime is not owned.
func (t *tracker) release(key string, gen uint64) (owned bool, startedAt time.Time) {
	if p, ok := t.calls[key]; ok && p.gen == gen {
		delete(t.calls, key)
		t.group.Forget(key)
		return true, p.startedAt
	}
	if p, ok := t.orphans[gen]; ok {
		delete(t.orphans, gen)
		return true, p.startedAt
	}
	return false, time.Time{}
}

// purgeStale orphans every call older than ceiling and returns the count.
func (t *tracker) purgeStale(now time.Time, ceiling time.Duration) int {
	n := 0
	for key, p := range t.calls {
		if now.Sub(p.startedAt) > ceiling {
			delete(t.calls, key)
			t.group.Forget(key)
			t.orphans[p.gen] = p
			n++
		}
	}
	return n
}

// forget removes the live record for key. Orphaned calls for the same key are
// disowned too, so none of them will write once they settle.
func (t *tracker) forget(key string) {
	if _, ok := t.calls[key]; ok {
		delete(t.calls, key)
		t.group.Forget(key)
	}
	for gen, p := range t.orphans {
		if p.key == key {
			delete(t.orphans, gen)
		}
	}
}

func (t *tracker) reset() {
	for key := range t.calls {
		t.group.Forget(key)
	}
	t.calls = make(map[string]pendingCall)
	t.orphans = make(map[uint64]pendingCall)
}

func (t *tracker) len() int {
	return len(t.calls)
}
