// Package storage persists imported measurements, channel assignments and
// performance settings in a single sqlite database file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/kilnlab/oven-telemetry/internal/grid"
	"github.com/kilnlab/oven-telemetry/internal/oven"
)

// SqliteStore implements Store on top of a sqlite database file. Read and
// write connections are opened lazily, at most once each.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the database file at dbPath. The
// file and schema are created on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) InsertMeasurement(ctx context.Context, m *oven.Measurement) (id int64, err error) {
	records, err := m.MarshalRecords()
	if err != nil {
		err = fmt.Errorf("serializing records: %w", err)
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, m.Filename, string(m.Group), string(records))
	if err != nil {
		err = fmt.Errorf("inserting measurement: %w", err)
		return
	}

	id, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting measurement ID: %w", err)
	}
	return
}

func (s *SqliteStore) Measurement(ctx context.Context, id int64) (m *oven.Measurement, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectMeasurementSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var row measurementData
	if err = stmt.QueryRowContext(ctx, id).Scan(&row.ID, &row.Filename, &row.Group, &row.Records); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		err = fmt.Errorf("scanning measurement: %w", err)
		return
	}

	return row.toMeasurement(), nil
}

func (s *SqliteStore) Measurements(ctx context.Context) (measurements []*oven.Measurement, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectMeasurementsSQL)
	if err != nil {
		err = fmt.Errorf("querying measurements: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var row measurementData
		if err = rows.Scan(&row.ID, &row.Filename, &row.Group, &row.Records); err != nil {
			err = fmt.Errorf("scanning measurement: %w", err)
			return
		}
		measurements = append(measurements, row.toMeasurement())
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) DeleteMeasurement(ctx context.Context, id int64) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, deleteMeasurementSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("deleting measurement: %w", err)
	}
	return
}

func (s *SqliteStore) SaveAssignments(ctx context.Context, assignments []grid.Assignment) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if _, err = tx.ExecContext(ctx, deleteAssignmentsSQL); err != nil {
		return fmt.Errorf("clearing assignments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertAssignmentSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, a := range assignments {
		if _, err = stmt.ExecContext(ctx, a.Channel, string(a.Topology), a.Row, a.Col, a.Active); err != nil {
			return fmt.Errorf("inserting assignment for channel %d: %w", a.Channel, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return
}

func (s *SqliteStore) Assignments(ctx context.Context) (assignments []grid.Assignment, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectAssignmentsSQL)
	if err != nil {
		err = fmt.Errorf("querying assignments: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var a grid.Assignment
		var topology string
		if err = rows.Scan(&a.Channel, &topology, &a.Row, &a.Col, &a.Active); err != nil {
			err = fmt.Errorf("scanning assignment: %w", err)
			return
		}
		a.Topology = grid.Topology(topology)
		assignments = append(assignments, a)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) SaveSettings(ctx context.Context, topology grid.Topology, settings grid.Settings) (err error) {
	if err = settings.Validate(topology); err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if _, err = tx.ExecContext(ctx, deleteSettingsSQL, string(topology)); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSettingSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for slot, percent := range settings {
		if _, err = stmt.ExecContext(ctx, string(topology), slot, percent); err != nil {
			return fmt.Errorf("inserting setting slot %d: %w", slot, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return
}

func (s *SqliteStore) Settings(ctx context.Context, topology grid.Topology) (settings grid.Settings, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSettingsSQL, string(topology))
	if err != nil {
		err = fmt.Errorf("querying settings: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var slot, percent int
		if err = rows.Scan(&slot, &percent); err != nil {
			err = fmt.Errorf("scanning setting: %w", err)
			return
		}
		for len(settings) <= slot {
			settings = append(settings, 0)
		}
		settings[slot] = percent
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
