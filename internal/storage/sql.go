package storage

import (
	_ "embed"
)

const (
	insertMeasurementSQL = `
INSERT INTO measurements (
                          filename,
                          channel_group,
                          records)
VALUES (?, ?, ?)`

	selectMeasurementSQL = `
SELECT
    id,
    filename,
    channel_group,
    records
FROM measurements
WHERE
    id = ?`

	selectMeasurementsSQL = `
SELECT
    id,
    filename,
    channel_group,
    records
FROM measurements
ORDER BY id`

	deleteMeasurementSQL = `
DELETE FROM measurements
WHERE
    id = ?`

	deleteAssignmentsSQL = `DELETE FROM assignments`

	insertAssignmentSQL = `
INSERT INTO assignments (channel,
                         topology,
                         row,
                         col,
                         active)
VALUES (?, ?, ?, ?, ?)`

	selectAssignmentsSQL = `
SELECT
    channel,
    topology,
    row,
    col,
    active
FROM assignments
ORDER BY channel`

	deleteSettingsSQL = `
DELETE FROM performance_settings
WHERE
    topology = ?`

	insertSettingSQL = `
INSERT INTO performance_settings (topology,
                                  slot,
                                  percent)
VALUES (?, ?, ?)`

	selectSettingsSQL = `
SELECT
    slot,
    percent
FROM performance_settings
WHERE
    topology = ?
ORDER BY slot`
)

//go:embed schema.sql
var initSchemaSQL string
