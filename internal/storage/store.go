package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kilnlab/oven-telemetry/internal/grid"
	"github.com/kilnlab/oven-telemetry/internal/oven"
)

// Store is the persistence collaborator of the telemetry core. It keeps
// imported measurements (as serialized record sequences), the channel
// placement assignments, and the per-topology performance-settings arrays.
// All writes are atomic.
type Store interface {
	// InsertMeasurement persists a decoded measurement and returns its ID.
	// The record sequence is serialized in insertion order.
	InsertMeasurement(ctx context.Context, m *oven.Measurement) (id int64, err error)

	// Measurement loads a measurement by ID. It returns nil without error
	// when no measurement exists under the ID. Records stay serialized
	// until first accessed.
	Measurement(ctx context.Context, id int64) (*oven.Measurement, error)

	// Measurements returns all stored measurements in import order.
	Measurements(ctx context.Context) ([]*oven.Measurement, error)

	// DeleteMeasurement removes a measurement. Deleting an unknown ID is
	// not an error.
	DeleteMeasurement(ctx context.Context, id int64) error

	// SaveAssignments replaces the stored channel placement with the given
	// set in a single transaction.
	SaveAssignments(ctx context.Context, assignments []grid.Assignment) error

	// Assignments returns the stored channel placement ordered by channel.
	Assignments(ctx context.Context) ([]grid.Assignment, error)

	// SaveSettings replaces a topology's performance-settings array. The
	// array is stored slot by slot in the topology's traversal order.
	SaveSettings(ctx context.Context, topology grid.Topology, settings grid.Settings) error

	// Settings loads a topology's performance-settings array, nil when
	// none was saved.
	Settings(ctx context.Context, topology grid.Topology) (grid.Settings, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
