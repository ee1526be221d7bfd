// Package resolve answers playback queries against decoded measurements:
// which record corresponds to an elapsed-time offset, what a channel read at
// that instant, and aggregate statistics over a channel set.
//
// Resolution is split in two. The functions in this file are pure: they
// report what a channel resolved to and whether the caller should latch the
// channel inactive. Session applies those latches and carries them for the
// rest of the playback session.
package resolve

import (
	"time"

	"github.com/kilnlab/oven-telemetry/internal/oven"
)

// TargetTimestamp returns the record timestamp addressed by an elapsed-time
// offset: the first record's timestamp plus the offset. ok is false when the
// measurement is absent or holds no records.
func TargetTimestamp(m *oven.Measurement, offset time.Duration) (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}

	records, err := m.Records()
	if err != nil || len(records) == 0 {
		return time.Time{}, false
	}

	return records[0].Timestamp.Add(offset), true
}

// ValueAt extracts a channel's reading from a record by in-group index.
// Indices outside the record's temperature sequence resolve to unavailable,
// not an error.
func ValueAt(rec oven.Record, index int) oven.Reading {
	if index < 0 || index >= len(rec.Temps) {
		return oven.Unavailable()
	}
	return rec.Temps[index]
}

// Outcome is the result of resolving one channel at one offset. Deactivate
// tells the caller the channel must be latched inactive for the rest of the
// session; the resolution itself never mutates anything.
type Outcome struct {
	Reading    oven.Reading
	Deactivate bool
}

// Resolve looks up a channel's reading in the group's measurement at the
// given offset. The target timestamp is matched against record timestamps at
// one-decimal sub-second precision by exact equality; there is no
// interpolation and no nearest-record fallback. A miss (absent measurement,
// no matching record, index out of bounds) degrades to unavailable.
// Unavailable and BURNOUT outcomes request deactivation.
func Resolve(m *oven.Measurement, index int, offset time.Duration) Outcome {
	miss := Outcome{Reading: oven.Unavailable(), Deactivate: true}

	if m == nil {
		return miss
	}

	records, err := m.Records()
	if err != nil || len(records) == 0 {
		return miss
	}

	want := records[0].Timestamp.Add(offset).Format(oven.TimestampLayout)
	for _, rec := range records {
		if rec.Timestamp.Format(oven.TimestampLayout) != want {
			continue
		}

		reading := ValueAt(rec, index)
		return Outcome{
			Reading:    reading,
			Deactivate: !reading.IsAvailable(),
		}
	}

	return miss
}
