package gbd

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
	"time"
)

const testHeaderSize = 128

// buildFile assembles a measurement file: the given header lines padded to
// testHeaderSize bytes, followed by the raw int16 values big-endian.
func buildFile(t *testing.T, lines string, values ...int16) []byte {
	t.Helper()

	if len(lines) > testHeaderSize {
		t.Fatalf("header lines exceed %d bytes", testHeaderSize)
	}

	data := make([]byte, 0, testHeaderSize+2*len(values))
	data = append(data, lines...)
	for len(data) < testHeaderSize {
		data = append(data, '\n')
	}

	for _, v := range values {
		data = binary.BigEndian.AppendUint16(data, uint16(v))
	}
	return data
}

const testLines = "  Trigger = 2024-01-01 08:00:00\n  Sample = 2s\n  MaxCH = 2\n  HeaderSiz = 128\n"

func TestDecode_EndToEnd(t *testing.T) {
	data := buildFile(t, testLines,
		100, 200, 0, 0,
		150, -50, 0, 0,
		999, 999, 0, 0,
	)

	header, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if header.ChannelCount != 2 {
		t.Errorf("Expected 2 channels, got %d", header.ChannelCount)
	}
	if header.SampleInterval != 2*time.Second {
		t.Errorf("Expected 2s interval, got %s", header.SampleInterval)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	wantTimestamps := []string{
		"2024-01-01 08:00:00.0",
		"2024-01-01 08:00:02.0",
		"2024-01-01 08:00:04.0",
	}
	wantTemps := [][]float64{
		{10.0, 20.0},
		{15.0, -5.0},
		{99.9, 99.9},
	}

	for i, rec := range records {
		if got := rec.Timestamp.Format("2006-01-02 15:04:05.0"); got != wantTimestamps[i] {
			t.Errorf("Record %d: expected timestamp %s, got %s", i, wantTimestamps[i], got)
		}
		for c, want := range wantTemps[i] {
			v, ok := rec.Temps[c].Value()
			if !ok {
				t.Fatalf("Record %d channel %d: expected numeric reading, got %s", i, c, rec.Temps[c].Display())
			}
			if v != want {
				t.Errorf("Record %d channel %d: expected %.1f, got %.1f", i, c, want, v)
			}
		}
		if rec.Alarm1 != 0 || rec.AlarmOut != 0 {
			t.Errorf("Record %d: expected zero alarms, got %d/%d", i, rec.Alarm1, rec.AlarmOut)
		}
	}
}

func TestDecode_TemperatureScaling(t *testing.T) {
	// Raw 0x00FA (=250) decodes to 25.0°C
	data := buildFile(t, testLines, 0x00FA, 0, 0, 0)

	_, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	v, ok := records[0].Temps[0].Value()
	if !ok || v != 25.0 {
		t.Errorf("Expected 25.0°C, got %v (numeric=%v)", v, ok)
	}
}

func TestDecode_BurnoutSentinel(t *testing.T) {
	data := buildFile(t, testLines, 0x7FFF, 123, 1, -1)

	_, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !records[0].Temps[0].IsBurnout() {
		t.Error("Expected BURNOUT reading for raw 0x7FFF")
	}
	if v, ok := records[0].Temps[1].Value(); !ok || v != 12.3 {
		t.Errorf("Expected 12.3°C on channel 2, got %v", v)
	}
	if records[0].Alarm1 != 1 || records[0].AlarmOut != -1 {
		t.Errorf("Expected raw alarms 1/-1, got %d/%d", records[0].Alarm1, records[0].AlarmOut)
	}
}

func TestDecode_DropsPartialTrailingRecord(t *testing.T) {
	data := buildFile(t, testLines,
		100, 200, 0, 0,
		150, -50, 0, 0,
	)
	data = append(data, 0x01, 0x02, 0x03) // stray bytes, less than one record

	_, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 complete records, got %d", len(records))
	}
}

func TestDecode_RecordCountProperty(t *testing.T) {
	// record size is 2*2+4 = 8 bytes; 35 payload bytes hold 4 records
	values := make([]int16, 16)
	data := buildFile(t, testLines, values...)
	data = append(data, 0x00, 0x00, 0x00)

	wantCount := (len(data) - testHeaderSize) / 8

	_, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != wantCount {
		t.Errorf("Expected %d records, got %d", wantCount, len(records))
	}
}

func TestDecode_Deterministic(t *testing.T) {
	data := buildFile(t, testLines,
		100, 200, 0, 0,
		0x7FFF, -50, 1, 2,
	)

	_, first, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	_, second, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Decoding identical bytes twice produced different records")
	}
}

func TestDecode_NoRecords(t *testing.T) {
	data := buildFile(t, testLines)

	if _, _, err := Decode(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestDecode_HeaderErrors(t *testing.T) {
	testCases := []struct {
		name      string
		lines     string
		wantField string
	}{
		{
			"missing trigger",
			"  Sample = 2s\n  MaxCH = 2\n  HeaderSiz = 128\n",
			"Trigger",
		},
		{
			"missing sample interval",
			"  Trigger = 2024-01-01 08:00:00\n  MaxCH = 2\n  HeaderSiz = 128\n",
			"Sample",
		},
		{
			"missing channel count",
			"  Trigger = 2024-01-01 08:00:00\n  Sample = 2s\n  HeaderSiz = 128\n",
			"MaxCH",
		},
		{
			"missing header size",
			"  Trigger = 2024-01-01 08:00:00\n  Sample = 2s\n  MaxCH = 2\n",
			"HeaderSiz",
		},
		{
			"unparsable trigger",
			"  Trigger = yesterday\n  Sample = 2s\n  MaxCH = 2\n  HeaderSiz = 128\n",
			"Trigger",
		},
		{
			"non-positive interval",
			"  Trigger = 2024-01-01 08:00:00\n  Sample = 0s\n  MaxCH = 2\n  HeaderSiz = 128\n",
			"Sample",
		},
		{
			"non-positive channel count",
			"  Trigger = 2024-01-01 08:00:00\n  Sample = 2s\n  MaxCH = 0\n  HeaderSiz = 128\n",
			"MaxCH",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := buildFile(t, tc.lines, 100, 200, 0, 0)

			_, _, err := Decode(data)

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Expected FormatError, got %v", err)
			}
			if formatErr.Field != tc.wantField {
				t.Errorf("Expected field %q, got %q", tc.wantField, formatErr.Field)
			}
		})
	}
}

func TestDecode_IgnoresUnrecognizedLines(t *testing.T) {
	lines := "GRAPHTEC\n  Trigger = 2024/01/01 08:00:00\n  Sample = 2s\n  MaxCH = 2\n  HeaderSiz = 128\n"
	data := buildFile(t, lines, 100, 200, 0, 0)

	header, records, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
	if got := header.Trigger.Format("2006-01-02 15:04:05"); got != "2024-01-01 08:00:00" {
		t.Errorf("Expected slash-format trigger to parse, got %s", got)
	}
}

func TestIsMeasurementFile(t *testing.T) {
	testCases := []struct {
		name string
		want bool
	}{
		{"oven_run.GBD", true},
		{"oven_run.gbd", true},
		{"oven_run.Gbd", true},
		{"oven_run.csv", false},
		{"oven_run", false},
	}

	for _, tc := range testCases {
		if got := IsMeasurementFile(tc.name); got != tc.want {
			t.Errorf("IsMeasurementFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
