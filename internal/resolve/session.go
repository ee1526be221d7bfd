package resolve

import (
	"time"

	"github.com/kilnlab/oven-telemetry/internal/oven"
)

// Session holds the measurements loaded for playback and the per-channel
// deactivation latches. Once a channel resolved to unavailable or BURNOUT it
// is latched: later queries return the latched reading without
// re-evaluation, even if the channel's measurement group becomes available
// later in the same session. Session is not safe for concurrent use;
// callers with multiple consumers must serialize access.
type Session struct {
	measurements map[oven.Group]*oven.Measurement
	latched      map[int]oven.Reading
}

// NewSession creates an empty session with every channel active.
func NewSession() *Session {
	return &Session{
		measurements: make(map[oven.Group]*oven.Measurement),
		latched:      make(map[int]oven.Reading),
	}
}

// SetMeasurement attaches a measurement to its channel group, replacing any
// previous one. Existing channel latches are deliberately not reset.
func (s *Session) SetMeasurement(m *oven.Measurement) {
	if m != nil {
		s.measurements[m.Group] = m
	}
}

// Measurement returns the measurement loaded for a group, or nil.
func (s *Session) Measurement(group oven.Group) *oven.Measurement {
	return s.measurements[group]
}

// Deactivate latches a channel inactive, as the placement UI does for
// channels unticked by the operator. There is no way to reactivate a
// channel within a session.
func (s *Session) Deactivate(channel int) {
	s.latched[channel] = oven.Unavailable()
}

// Active reports whether a channel is a valid channel number and has not
// been latched inactive.
func (s *Session) Active(channel int) bool {
	if _, _, ok := oven.GroupFor(channel); !ok {
		return false
	}
	_, latched := s.latched[channel]
	return !latched
}

// TargetTimestamp resolves an offset against a group's measurement.
func (s *Session) TargetTimestamp(group oven.Group, offset time.Duration) (time.Time, bool) {
	return TargetTimestamp(s.measurements[group], offset)
}

// Value resolves a channel's reading at the given offset and applies the
// resulting latch. Latched channels return their latched reading without
// being re-evaluated.
func (s *Session) Value(channel int, offset time.Duration) oven.Reading {
	if _, _, ok := oven.GroupFor(channel); !ok {
		return oven.Unavailable()
	}
	if r, ok := s.latched[channel]; ok {
		return r
	}

	group, index, _ := oven.GroupFor(channel)
	outcome := Resolve(s.measurements[group], index, offset)
	if outcome.Deactivate {
		s.latched[channel] = outcome.Reading
	}

	return outcome.Reading
}

// Average returns the mean temperature over the given channels at the
// offset, counting only active channels that resolved to a numeric reading.
// It returns nil when no channel contributes.
func (s *Session) Average(channels []int, offset time.Duration) *float64 {
	var sum float64
	var n int

	for _, ch := range channels {
		if v, ok := s.contribute(ch, offset); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}

	avg := sum / float64(n)
	return &avg
}

// MinMax returns the minimum and maximum temperature over the given
// channels at the offset, with the same contribution rules as Average.
// Both results are nil when no channel contributes.
func (s *Session) MinMax(channels []int, offset time.Duration) (*float64, *float64) {
	var lo, hi *float64

	for _, ch := range channels {
		v, ok := s.contribute(ch, offset)
		if !ok {
			continue
		}

		if lo == nil || v < *lo {
			value := v
			lo = &value
		}
		if hi == nil || v > *hi {
			value := v
			hi = &value
		}
	}

	return lo, hi
}

// contribute resolves a channel for an aggregate. Latched channels are
// skipped; unavailable and BURNOUT resolutions latch the channel and are
// excluded from the aggregate.
func (s *Session) contribute(channel int, offset time.Duration) (float64, bool) {
	if !s.Active(channel) {
		return 0, false
	}
	return s.Value(channel, offset).Value()
}
