package oven

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// BurnoutLabel is the display and serialization form of a failed sensor.
	BurnoutLabel = "BURNOUT"

	// UnavailableLabel is the display and serialization form of a reading
	// that could not be resolved.
	UnavailableLabel = "N/A"
)

type readingKind uint8

const (
	readingUnavailable readingKind = iota
	readingValue
	readingBurnout
)

// Reading is a single channel measurement. It is a tagged variant: a reading
// is exactly one of a numeric temperature in °C, the BURNOUT sensor-failure
// sentinel, or unavailable. The three states are never coerced into one
// another; downstream code must branch on them explicitly.
type Reading struct {
	kind    readingKind
	celsius float64
}

// Celsius returns a numeric reading with the given temperature in °C.
func Celsius(v float64) Reading {
	return Reading{kind: readingValue, celsius: v}
}

// Burnout returns the sensor-failure sentinel reading.
func Burnout() Reading {
	return Reading{kind: readingBurnout}
}

// Unavailable returns the no-data reading.
func Unavailable() Reading {
	return Reading{kind: readingUnavailable}
}

// Value returns the temperature in °C and true when the reading is numeric.
func (r Reading) Value() (float64, bool) {
	return r.celsius, r.kind == readingValue
}

// IsBurnout reports whether the reading is the BURNOUT sentinel.
func (r Reading) IsBurnout() bool {
	return r.kind == readingBurnout
}

// IsAvailable reports whether the reading carries a numeric temperature.
func (r Reading) IsAvailable() bool {
	return r.kind == readingValue
}

// Display renders the reading the way the placement UI shows it:
// "123.4°C" for numeric readings, "BURNOUT" and "N/A" for the sentinels.
func (r Reading) Display() string {
	switch r.kind {
	case readingValue:
		return fmt.Sprintf("%.1f°C", r.celsius)
	case readingBurnout:
		return BurnoutLabel
	default:
		return UnavailableLabel
	}
}

// MarshalJSON serializes a numeric reading as a JSON number and the
// sentinels as the strings "BURNOUT" and "N/A".
func (r Reading) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case readingValue:
		return []byte(strconv.FormatFloat(r.celsius, 'f', 1, 64)), nil
	case readingBurnout:
		return json.Marshal(BurnoutLabel)
	default:
		return json.Marshal(UnavailableLabel)
	}
}

// UnmarshalJSON accepts a JSON number or the string sentinels. Any other
// value, including unknown strings, decodes as unavailable rather than
// failing the whole record.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*r = Celsius(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("oven.Reading: unexpected value %s", data)
	}

	if s == BurnoutLabel {
		*r = Burnout()
	} else {
		*r = Unavailable()
	}
	return nil
}
