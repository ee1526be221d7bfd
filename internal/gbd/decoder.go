// Package gbd decodes the proprietary .GBD measurement files recorded by the
// oven data logger: a newline-delimited text header followed by a stream of
// fixed-width big-endian binary records.
package gbd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilnlab/oven-telemetry/internal/oven"
)

const (
	fieldTrigger    = "Trigger"
	fieldSample     = "Sample"
	fieldChannels   = "MaxCH"
	fieldHeaderSize = "HeaderSiz"

	// burnoutRaw is the raw int16 the logger writes for a failed sensor.
	burnoutRaw = 0x7FFF

	// Extension is the measurement file extension convention, matched
	// case-insensitively.
	Extension = ".gbd"
)

// triggerLayouts are the accepted trigger timestamp formats.
var triggerLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// Header holds the decoded text header of a measurement file.
type Header struct {
	Trigger        time.Time     // trigger timestamp; timestamps of all records derive from it
	SampleInterval time.Duration // time between consecutive records
	ChannelCount   int           // temperatures per record
	HeaderSize     int           // byte offset of the binary payload
}

// recordSize returns the width of one binary record in bytes: one int16 per
// channel plus the two alarm words.
func (h *Header) recordSize() int {
	return 2*h.ChannelCount + 4
}

// IsMeasurementFile reports whether the file name carries the .GBD extension.
func IsMeasurementFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// DecodeFile reads and decodes a measurement file. Read failures are wrapped
// with the file path; decode failures are returned as-is.
func DecodeFile(path string) (*Header, []oven.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading measurement file %q: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a raw measurement file buffer into its header and the
// ordered record sequence. It returns a *FormatError if a required header
// field is missing or invalid and ErrTruncated if the payload holds no
// complete record. Trailing bytes that do not form a complete record are
// dropped.
func Decode(data []byte) (*Header, []oven.Record, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	records, err := decodeRecords(header, data)
	if err != nil {
		return nil, nil, err
	}

	return header, records, nil
}

// parseHeader scans the newline-delimited "key = value" lines preceding the
// binary payload. Keys are matched by prefix; unrecognized lines are
// ignored. Scanning stops once every recognized field has been seen, or at
// the declared header size when it is known.
func parseHeader(data []byte) (*Header, error) {
	var (
		header     Header
		hasTrigger bool
		hasSample  bool
		hasCount   bool
		hasSize    bool
	)

	for pos := 0; pos < len(data); {
		if hasSize && pos >= header.HeaderSize {
			break
		}

		end := bytes.IndexByte(data[pos:], '\n')
		if end < 0 {
			break
		}

		line := strings.TrimSpace(strings.TrimSuffix(string(data[pos:pos+end]), "\r"))
		pos += end + 1

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.HasPrefix(key, fieldTrigger):
			t, err := parseTrigger(value)
			if err != nil {
				return nil, err
			}
			header.Trigger = t
			hasTrigger = true

		case strings.HasPrefix(key, fieldSample):
			d, err := parseInterval(value)
			if err != nil {
				return nil, err
			}
			header.SampleInterval = d
			hasSample = true

		case strings.HasPrefix(key, fieldHeaderSize):
			n, err := parsePositiveInt(fieldHeaderSize, value)
			if err != nil {
				return nil, err
			}
			header.HeaderSize = n
			hasSize = true

		case strings.HasPrefix(key, fieldChannels):
			n, err := parsePositiveInt(fieldChannels, value)
			if err != nil {
				return nil, err
			}
			header.ChannelCount = n
			hasCount = true
		}

		if hasTrigger && hasSample && hasCount && hasSize {
			break
		}
	}

	switch {
	case !hasTrigger:
		return nil, newFormatError(fieldTrigger, "missing")
	case !hasSample:
		return nil, newFormatError(fieldSample, "missing")
	case !hasCount:
		return nil, newFormatError(fieldChannels, "missing")
	case !hasSize:
		return nil, newFormatError(fieldHeaderSize, "missing")
	}

	return &header, nil
}

func parseTrigger(value string) (time.Time, error) {
	for _, layout := range triggerLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, newFormatError(fieldTrigger, "unparsable timestamp %q", value)
}

// parseInterval parses the sample interval, stripping the trailing unit
// character the logger appends (e.g. "2s").
func parseInterval(value string) (time.Duration, error) {
	if value != "" {
		if last := value[len(value)-1]; last < '0' || last > '9' {
			value = value[:len(value)-1]
		}
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, newFormatError(fieldSample, "unparsable interval %q", value)
	}
	if secs <= 0 {
		return 0, newFormatError(fieldSample, "non-positive interval %v", secs)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func parsePositiveInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, newFormatError(field, "unparsable integer %q", value)
	}
	if n <= 0 {
		return 0, newFormatError(field, "non-positive value %d", n)
	}
	return n, nil
}

// decodeRecords walks the binary payload record by record. Values are fixed
// big-endian regardless of host byte order: temperatures are int16 tenths of
// a degree, the two trailing alarm words are kept raw.
func decodeRecords(header *Header, data []byte) ([]oven.Record, error) {
	if header.HeaderSize >= len(data) {
		return nil, ErrTruncated
	}

	body := data[header.HeaderSize:]
	size := header.recordSize()

	count := len(body) / size
	if count == 0 {
		return nil, ErrTruncated
	}

	records := make([]oven.Record, 0, count)
	for i := 0; i < count; i++ {
		rec := body[i*size : (i+1)*size]

		temps := make([]oven.Reading, header.ChannelCount)
		for c := 0; c < header.ChannelCount; c++ {
			raw := int16(binary.BigEndian.Uint16(rec[2*c:]))
			if raw == burnoutRaw {
				temps[c] = oven.Burnout()
			} else {
				temps[c] = oven.Celsius(float64(raw) / 10.0)
			}
		}

		records = append(records, oven.Record{
			Timestamp: header.Trigger.Add(time.Duration(i) * header.SampleInterval),
			Temps:     temps,
			Alarm1:    int16(binary.BigEndian.Uint16(rec[size-4:])),
			AlarmOut:  int16(binary.BigEndian.Uint16(rec[size-2:])),
		})
	}

	return records, nil
}
