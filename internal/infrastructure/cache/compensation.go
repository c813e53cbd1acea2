package cache

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Compensator derives a time-adjusted value from the snapshot retained at
// write time. It returns ok=false when the snapshot cannot be adjusted, in
// which case the cache serves the stored value unchanged.
type Compensator interface {
	Compensate(snapshot any, elapsed time.Duration, now time.Time) (value any, ok bool)
}

// CompensatorFunc adapts a plain function to Compensator.
type CompensatorFunc func(snapshot any, elapsed time.Duration, now time.Time) (any, bool)

func (f CompensatorFunc) Compensate(snapshot any, elapsed time.Duration, now time.Time) (any, bool) {
	return f(snapshot, elapsed, now)
}

// JSONProgress advances a millisecond progress field of a JSON document by
// the time elapsed since it was cached, and stamps timestampPath with the
// current unix time in milliseconds. timestampPath may be empty.
//
// Supported value types are []byte, json.RawMessage and string; the result
// has the same type as the snapshot.
func JSONProgress(progressPath, timestampPath string) Compensator {
	return &jsonProgress{progressPath: progressPath, timestampPath: timestampPath}
}

type jsonProgress struct {
	progressPath  string
	timestampPath string
}

func (p *jsonProgress) Compensate(snapshot any, elapsed time.Duration, now time.Time) (any, bool) {
	var doc []byte
	switch v := snapshot.(type) {
	case []byte:
		doc = v
	case json.RawMessage:
		doc = v
	case string:
		doc = []byte(v)
	default:
		return nil, false
	}

	progress := gjson.GetBytes(doc, p.progressPath)
	if progress.Type != gjson.Number {
		return nil, false
	}

	// sjson copies doc, the snapshot stays untouched.
	out, err := sjson.SetBytes(doc, p.progressPath, progress.Int()+elapsed.Milliseconds())
	if err != nil {
		return nil, false
	}
	if p.timestampPath != "" {
		out, err = sjson.SetBytes(out, p.timestampPath, now.UnixMilli())
		if err != nil {
			return nil, false
		}
	}

	switch snapshot.(type) {
	case json.RawMessage:
		return json.RawMessage(out), true
	case string:
		return string(out), true
	default:
		return out, true
	}
}
