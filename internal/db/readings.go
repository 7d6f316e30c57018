package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telemetry-service/internal/models"
)

// InsertReading stores one raw reading. The measurement map is kept as JSONB
// so historical payload shapes survive untouched.
func (d *DB) InsertReading(ctx context.Context, r models.Reading) error {
	measurement, err := json.Marshal(r.Measurement)
	if err != nil {
		return fmt.Errorf("failed to marshal measurement: %w", err)
	}

	query := `
        INSERT INTO readings (device_id, ts_utc, rpm, sensor_type, fault_state, measurement, mqtt_topic)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = d.Pool.Exec(ctx, query,
		r.DeviceID,
		parseTimestamp(r.Timestamp),
		r.RPM,
		r.SensorType,
		r.FaultState,
		measurement,
		r.Topic,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

// ReadingRow is a stored reading as returned to the API.
type ReadingRow struct {
	DeviceID   string                 `json:"device_id"`
	TsUTC      *time.Time             `json:"ts_utc"`
	IngestedAt time.Time              `json:"ts_ingested_utc"`
	RPM        float64                `json:"rpm"`
	SensorType string                 `json:"sensor_type"`
	FaultState string                 `json:"fault_state"`
	Measurement map[string]interface{} `json:"measurement"`
}

// GetLatestReadings returns the most recent readings for a device, newest
// first.
func (d *DB) GetLatestReadings(ctx context.Context, deviceID string, limit int) ([]ReadingRow, error) {
	query := `
        SELECT device_id, ts_utc, ts_ingested_utc, COALESCE(rpm, 0), sensor_type, COALESCE(fault_state, ''), measurement
        FROM readings
        WHERE device_id = $1
        ORDER BY ts_ingested_utc DESC
        LIMIT $2`
	rows, err := d.Pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get readings: %w", err)
	}
	defer rows.Close()

	var list []ReadingRow
	for rows.Next() {
		var r ReadingRow
		var measurement []byte
		if err := rows.Scan(&r.DeviceID, &r.TsUTC, &r.IngestedAt, &r.RPM, &r.SensorType, &r.FaultState, &measurement); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if len(measurement) > 0 {
			if err := json.Unmarshal(measurement, &r.Measurement); err != nil {
				return nil, fmt.Errorf("failed to decode measurement: %w", err)
			}
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// parseTimestamp converts a wire timestamp into a nullable time. Malformed
// timestamps store as NULL rather than failing the insert.
func parseTimestamp(ts string) *time.Time {
	if ts == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, ts); err == nil {
			return &t
		}
	}
	return nil
}
