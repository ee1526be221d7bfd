package storage

import (
	"github.com/kilnlab/oven-telemetry/internal/oven"
)

type measurementData struct {
	ID       int64
	Filename string
	Group    string
	Records  string
}

func (d *measurementData) toMeasurement() *oven.Measurement {
	return oven.NewStoredMeasurement(d.ID, d.Filename, oven.Group(d.Group), []byte(d.Records))
}
