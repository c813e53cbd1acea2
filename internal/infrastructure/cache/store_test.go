package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestStore_ExpiresAfterTTL(t *testing.T) {
	s := newStore()
	s.write("canvas:abc", "video", 30*time.Second, epoch, nil)

	v, ok, _ := s.read("canvas:abc", epoch.Add(29999*time.Millisecond))
	require.True(t, ok)
	require.Equal(t, "video", v)

	v, ok, _ = s.read("canvas:abc", epoch.Add(30*time.Second))
	require.True(t, ok, "entry is still valid exactly at its ttl")
	require.Equal(t, "video", v)

	_, ok, expired := s.read("canvas:abc", epoch.Add(30001*time.Millisecond))
	require.False(t, ok)
	require.True(t, expired)
	require.Equal(t, 0, s.len(), "expired entry is removed on read")
}

func TestStore_OverwriteResetsStoredAt(t *testing.T) {
	s := newStore()
	s.write("k", 1, time.Second, epoch, nil)
	s.write("k", 2, time.Second, epoch.Add(900*time.Millisecond), nil)

	v, ok, _ := s.read("k", epoch.Add(1500*time.Millisecond))
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestStore_SweepRemovesOnlyInvalid(t *testing.T) {
	s := newStore()
	s.write("short", 1, time.Second, epoch, nil)
	s.write("long", 2, time.Minute, epoch, nil)

	require.Equal(t, 1, s.sweep(epoch.Add(2*time.Second)))
	require.Equal(t, 1, s.len())
	_, ok, _ := s.read("long", epoch.Add(2*time.Second))
	require.True(t, ok)
}

func TestStore_CompensatesProgress(t *testing.T) {
	s := newStore()
	doc := []byte(`{"progress":25000,"timestamp":1,"item":{"id":"x"}}`)
	s.write("player:progress", doc, 2*time.Second, epoch, JSONProgress("progress", "timestamp"))

	now := epoch.Add(2 * time.Second)
	v, ok, _ := s.read("player:progress", now)
	require.True(t, ok)
	out, isBytes := v.([]byte)
	require.True(t, isBytes)
	assert.Equal(t, int64(27000), gjson.GetBytes(out, "progress").Int())
	assert.Equal(t, now.UnixMilli(), gjson.GetBytes(out, "timestamp").Int())
	assert.Equal(t, "x", gjson.GetBytes(out, "item.id").String())
}

func TestStore_CompensationIsMonotonic(t *testing.T) {
	s := newStore()
	s.write("p", json.RawMessage(`{"progress_ms":100}`), 2*time.Second, epoch, JSONProgress("progress_ms", ""))

	last := int64(-1)
	for ms := 0; ms <= 2000; ms += 250 {
		v, ok, _ := s.read("p", epoch.Add(time.Duration(ms)*time.Millisecond))
		require.True(t, ok)
		raw, isRaw := v.(json.RawMessage)
		require.True(t, isRaw)
		got := gjson.GetBytes(raw, "progress_ms").Int()
		require.Equal(t, int64(100+ms), got)
		require.GreaterOrEqual(t, got, last)
		last = got
	}
}

func TestStore_SnapshotIsIsolatedFromCaller(t *testing.T) {
	s := newStore()
	doc := []byte(`{"progress":5}`)
	s.write("p", doc, time.Second, epoch, JSONProgress("progress", ""))
	doc[len(doc)-2] = '9'

	v, _, _ := s.read("p", epoch.Add(10*time.Millisecond))
	require.Equal(t, int64(15), gjson.GetBytes(v.([]byte), "progress").Int())
}

func TestStore_UncompensatedKeyIgnoresProgressField(t *testing.T) {
	s := newStore()
	doc := `{"progress":25000}`
	s.write("lyrics:abc", doc, time.Minute, epoch, nil)

	v, ok, _ := s.read("lyrics:abc", epoch.Add(10*time.Second))
	require.True(t, ok)
	require.Equal(t, doc, v)
}

func TestStore_MalformedSnapshotServedUnmodified(t *testing.T) {
	cases := map[string]any{
		"missing field":    []byte(`{"timestamp":1}`),
		"non numeric":      []byte(`{"progress":"soon"}`),
		"not json":         []byte(`nope`),
		"unsupported type": struct{ Progress int }{Progress: 3},
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			s.write("p", value, time.Second, epoch, JSONProgress("progress", "timestamp"))
			v, ok, _ := s.read("p", epoch.Add(500*time.Millisecond))
			require.True(t, ok)
			require.Equal(t, value, v)
		})
	}
}

func TestStore_CompensatorFuncReceivesElapsed(t *testing.T) {
	s := newStore()
	countdown := CompensatorFunc(func(snapshot any, elapsed time.Duration, _ time.Time) (any, bool) {
		left, ok := snapshot.(time.Duration)
		if !ok {
			return nil, false
		}
		return left - elapsed, true
	})
	s.write("k", 10*time.Second, time.Minute, epoch, countdown)

	v, ok, _ := s.read("k", epoch.Add(4*time.Second))
	require.True(t, ok)
	require.Equal(t, 6*time.Second, v)
}

func TestStore_FetchedAfterComparesFetchStart(t *testing.T) {
	s := newStore()
	s.writeFetched("k", "orphan", time.Minute, epoch.Add(32*time.Second), epoch, nil)

	require.False(t, s.fetchedAfter("k", epoch.Add(31*time.Second)), "written late but fetched early")
	require.True(t, s.fetchedAfter("k", epoch.Add(-time.Second)))

	s.write("k", "set", time.Minute, epoch.Add(40*time.Second), nil)
	require.True(t, s.fetchedAfter("k", epoch.Add(31*time.Second)), "a plain write counts from its store time")
	require.False(t, s.fetchedAfter("missing", epoch))
}
