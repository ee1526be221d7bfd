package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilnlab/oven-telemetry/internal/grid"
	"github.com/kilnlab/oven-telemetry/internal/oven"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "telemetry.db"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestSqliteStore_MeasurementRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	records := []oven.Record{
		{
			Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			Temps:     []oven.Reading{oven.Celsius(10.0), oven.Celsius(20.0)},
			Alarm1:    1,
		},
		{
			Timestamp: time.Date(2024, 1, 1, 8, 0, 2, 0, time.UTC),
			Temps:     []oven.Reading{oven.Burnout(), oven.Celsius(-5.0)},
		},
	}

	id, err := store.InsertMeasurement(ctx, oven.NewMeasurement("run.gbd", oven.GroupA, records))
	if err != nil {
		t.Fatalf("InsertMeasurement failed: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected a non-zero measurement ID")
	}

	m, err := store.Measurement(ctx, id)
	if err != nil {
		t.Fatalf("Measurement failed: %v", err)
	}
	if m == nil {
		t.Fatal("Expected stored measurement, got nil")
	}
	if m.Filename != "run.gbd" || m.Group != oven.GroupA {
		t.Errorf("Unexpected metadata: %q %q", m.Filename, m.Group)
	}

	got, err := m.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if v, ok := got[0].Temps[1].Value(); !ok || v != 20.0 {
		t.Errorf("Expected 20.0°C, got %v", v)
	}
	if !got[1].Temps[0].IsBurnout() {
		t.Error("Expected BURNOUT to survive the round trip")
	}
	if got[0].Alarm1 != 1 {
		t.Errorf("Expected alarm1=1, got %d", got[0].Alarm1)
	}

	all, err := store.Measurements(ctx)
	if err != nil {
		t.Fatalf("Measurements failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != id {
		t.Errorf("Expected a single measurement with ID %d, got %v", id, all)
	}

	if err = store.DeleteMeasurement(ctx, id); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}

	m, err = store.Measurement(ctx, id)
	if err != nil {
		t.Fatalf("Measurement after delete failed: %v", err)
	}
	if m != nil {
		t.Error("Expected nil after delete")
	}
}

func TestSqliteStore_MeasurementUnknownID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// first write creates the database file
	_, err := store.InsertMeasurement(ctx, oven.NewMeasurement("run.gbd", oven.GroupB, nil))
	if err != nil {
		t.Fatalf("InsertMeasurement failed: %v", err)
	}

	m, err := store.Measurement(ctx, 999)
	if err != nil {
		t.Fatalf("Measurement failed: %v", err)
	}
	if m != nil {
		t.Error("Expected nil for unknown ID")
	}

	if err = store.DeleteMeasurement(ctx, 999); err != nil {
		t.Errorf("Deleting an unknown ID should not fail: %v", err)
	}
}

func TestSqliteStore_AssignmentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assignments := []grid.Assignment{
		{Channel: 1, Topology: grid.MainTop, Row: 0, Col: 0, Active: true},
		{Channel: 2, Topology: grid.MainTop, Row: 0, Col: 2, Active: false},
		{Channel: 11, Topology: grid.ReinforcementTop, Row: 2, Col: 2, Active: true},
	}

	if err := store.SaveAssignments(ctx, assignments); err != nil {
		t.Fatalf("SaveAssignments failed: %v", err)
	}

	got, err := store.Assignments(ctx)
	if err != nil {
		t.Fatalf("Assignments failed: %v", err)
	}
	if len(got) != len(assignments) {
		t.Fatalf("Expected %d assignments, got %d", len(assignments), len(got))
	}
	for i, want := range assignments {
		if got[i] != want {
			t.Errorf("Assignment %d: got %+v, want %+v", i, got[i], want)
		}
	}

	// saving again replaces the full set
	if err = store.SaveAssignments(ctx, assignments[:1]); err != nil {
		t.Fatalf("SaveAssignments failed: %v", err)
	}
	got, err = store.Assignments(ctx)
	if err != nil {
		t.Fatalf("Assignments failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 assignment after replace, got %d", len(got))
	}
}

func TestSqliteStore_SettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	settings := make(grid.Settings, grid.ReinforcementTop.CellCount())
	for i := range settings {
		settings[i] = (i * 3) % 101
	}

	if err := store.SaveSettings(ctx, grid.ReinforcementTop, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := store.Settings(ctx, grid.ReinforcementTop)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if len(got) != len(settings) {
		t.Fatalf("Expected %d slots, got %d", len(settings), len(got))
	}
	for i := range settings {
		if got[i] != settings[i] {
			t.Errorf("Slot %d: got %d, want %d", i, got[i], settings[i])
		}
	}

	other, err := store.Settings(ctx, grid.MainTop)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if other != nil {
		t.Errorf("Expected nil settings for a topology without a saved array, got %v", other)
	}
}

func TestSqliteStore_SaveSettingsRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.SaveSettings(ctx, grid.MainTop, grid.Settings{50}); err == nil {
		t.Error("Expected a length validation error")
	}
}
