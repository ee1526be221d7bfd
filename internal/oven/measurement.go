// Package oven holds the domain model for decoded oven telemetry: records,
// per-channel readings and their sentinel semantics, and the measurement
// groups the data logger splits its twenty channels into.
package oven

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	// GroupSize is the number of channels recorded into one measurement file.
	GroupSize = 10

	// MaxChannels is the highest physical channel number on the data logger.
	MaxChannels = 20

	// TimestampLayout renders record timestamps with one decimal sub-second
	// digit. This is the precision used both for persisted records and for
	// playback-offset matching.
	TimestampLayout = "2006-01-02 15:04:05.0"
)

// Group identifies one of the two independently recorded channel groups.
type Group string

const (
	GroupA Group = "1-10"  // channels 1..10
	GroupB Group = "11-20" // channels 11..20
)

// GroupFor maps a physical channel number to its measurement group and the
// channel's index into that group's temperature sequence. Channels outside
// 1..MaxChannels report ok=false.
func GroupFor(channel int) (group Group, index int, ok bool) {
	switch {
	case channel >= 1 && channel <= GroupSize:
		return GroupA, channel - 1, true
	case channel > GroupSize && channel <= MaxChannels:
		return GroupB, channel - GroupSize - 1, true
	default:
		return "", 0, false
	}
}

// Record is one sampling tick: a derived timestamp, one reading per channel
// in the group, and the logger's two alarm flags. Alarm values are the raw
// 16-bit words from the file, not temperatures.
type Record struct {
	Timestamp time.Time
	Temps     []Reading
	Alarm1    int16
	AlarmOut  int16
}

type recordJSON struct {
	Timestamp    string    `json:"timestamp"`
	Temperatures []Reading `json:"temperatures"`
	Alarm1       int16     `json:"alarm1"`
	AlarmOut     int16     `json:"alarmOut"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Timestamp:    r.Timestamp.Format(TimestampLayout),
		Temperatures: r.Temps,
		Alarm1:       r.Alarm1,
		AlarmOut:     r.AlarmOut,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	ts, err := time.Parse(TimestampLayout, v.Timestamp)
	if err != nil {
		return fmt.Errorf("oven.Record: parsing timestamp: %w", err)
	}

	r.Timestamp = ts
	r.Temps = v.Temperatures
	r.Alarm1 = v.Alarm1
	r.AlarmOut = v.AlarmOut
	return nil
}

// Measurement is one imported measurement file: an ordered record sequence
// for a single channel group. Records are immutable after import. When a
// measurement is loaded from storage it carries the serialized record JSON
// and parses it at most once, on first access.
type Measurement struct {
	ID       int64
	Filename string
	Group    Group

	records     []Record
	recordsJSON []byte

	parseOnce sync.Once
	parseErr  error
}

// NewMeasurement creates a measurement from freshly decoded records.
func NewMeasurement(filename string, group Group, records []Record) *Measurement {
	return &Measurement{Filename: filename, Group: group, records: records}
}

// NewStoredMeasurement creates a measurement backed by serialized records,
// as loaded from the persistence collaborator. The JSON is not parsed until
// Records is first called.
func NewStoredMeasurement(id int64, filename string, group Group, recordsJSON []byte) *Measurement {
	return &Measurement{ID: id, Filename: filename, Group: group, recordsJSON: recordsJSON}
}

// Records returns the ordered record sequence, parsing the serialized form
// exactly once for stored measurements.
func (m *Measurement) Records() ([]Record, error) {
	m.parseOnce.Do(func() {
		if m.records != nil || m.recordsJSON == nil {
			return
		}
		if err := json.Unmarshal(m.recordsJSON, &m.records); err != nil {
			m.parseErr = fmt.Errorf("parsing records of measurement %q: %w", m.Filename, err)
		}
	})

	return m.records, m.parseErr
}

// MarshalRecords serializes the record sequence for persistence.
func (m *Measurement) MarshalRecords() ([]byte, error) {
	records, err := m.Records()
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}
