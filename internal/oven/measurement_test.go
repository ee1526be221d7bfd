package oven

import (
	"strings"
	"testing"
	"time"
)

func TestGroupFor(t *testing.T) {
	testCases := []struct {
		channel   int
		wantGroup Group
		wantIndex int
		wantOK    bool
	}{
		{1, GroupA, 0, true},
		{10, GroupA, 9, true},
		{11, GroupB, 0, true},
		{20, GroupB, 9, true},
		{0, "", 0, false},
		{21, "", 0, false},
		{-3, "", 0, false},
	}

	for _, tc := range testCases {
		group, index, ok := GroupFor(tc.channel)
		if group != tc.wantGroup || index != tc.wantIndex || ok != tc.wantOK {
			t.Errorf("GroupFor(%d) = (%q, %d, %v), want (%q, %d, %v)",
				tc.channel, group, index, ok, tc.wantGroup, tc.wantIndex, tc.wantOK)
		}
	}
}

func TestRecord_TimestampPrecision(t *testing.T) {
	rec := Record{
		Timestamp: time.Date(2024, 1, 1, 8, 0, 2, 500_000_000, time.UTC),
		Temps:     []Reading{Celsius(15.0)},
	}

	data, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `"timestamp":"2024-01-01 08:00:02.5"`
	if got := string(data); !strings.Contains(got, want) {
		t.Errorf("Expected one-decimal timestamp %s in %s", want, got)
	}
}

func TestMeasurement_RecordsParseOnce(t *testing.T) {
	recordsJSON := []byte(`[
		{"timestamp":"2024-01-01 08:00:00.0","temperatures":[10.0,"BURNOUT"],"alarm1":0,"alarmOut":0},
		{"timestamp":"2024-01-01 08:00:02.0","temperatures":[15.0,"N/A"],"alarm1":1,"alarmOut":0}
	]`)

	m := NewStoredMeasurement(7, "run.gbd", GroupA, recordsJSON)

	first, err := m.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(first))
	}

	second, err := m.Records()
	if err != nil {
		t.Fatalf("Records failed on second call: %v", err)
	}
	if &first[0] != &second[0] {
		t.Error("Expected the parsed cache to be reused, not re-parsed")
	}

	if v, ok := first[0].Temps[0].Value(); !ok || v != 10.0 {
		t.Errorf("Expected 10.0°C, got %v", v)
	}
	if !first[0].Temps[1].IsBurnout() {
		t.Error("Expected BURNOUT on channel 2")
	}
	if first[1].Temps[1].IsAvailable() {
		t.Error("Expected N/A on channel 2 of second record")
	}
	if first[1].Alarm1 != 1 {
		t.Errorf("Expected alarm1=1, got %d", first[1].Alarm1)
	}
}

func TestMeasurement_RecordsParseError(t *testing.T) {
	m := NewStoredMeasurement(1, "broken.gbd", GroupA, []byte("not json"))

	if _, err := m.Records(); err == nil {
		t.Fatal("Expected parse error")
	}

	// the failed parse is cached, not retried
	if _, err := m.Records(); err == nil {
		t.Fatal("Expected cached parse error on second call")
	}
}

func TestMeasurement_SerializationRoundTrip(t *testing.T) {
	records := []Record{
		{
			Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			Temps:     []Reading{Celsius(10.0), Burnout()},
			Alarm1:    3,
		},
	}

	m := NewMeasurement("run.gbd", GroupA, records)

	data, err := m.MarshalRecords()
	if err != nil {
		t.Fatalf("MarshalRecords failed: %v", err)
	}

	loaded := NewStoredMeasurement(1, m.Filename, m.Group, data)
	got, err := loaded.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(records[0].Timestamp) {
		t.Errorf("Expected timestamp %s, got %s", records[0].Timestamp, got[0].Timestamp)
	}
	if !got[0].Temps[1].IsBurnout() {
		t.Error("Expected BURNOUT to survive persistence")
	}
	if got[0].Alarm1 != 3 {
		t.Errorf("Expected alarm1=3, got %d", got[0].Alarm1)
	}
}
