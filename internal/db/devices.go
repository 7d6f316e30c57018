package db

import (
	"context"
	"fmt"
	"time"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/models"
)

// Device is the last-seen snapshot of one device across all four channels.
type Device struct {
	DeviceID     string    `json:"device_id"`
	LastSeen     time.Time `json:"last_seen"`
	RPM          *float64  `json:"rpm"`
	TempC        *float64  `json:"temp_c"`
	CurrentA     *float64  `json:"current_a"`
	SoundDB      *float64  `json:"sound_db"`
	HealthScore  *float64  `json:"health_score"`
	VibFault     *string   `json:"vib_fault"`
	TempFault    *string   `json:"temp_fault"`
	CurrentFault *string   `json:"current_fault"`
	SoundFault   *string   `json:"sound_fault"`
}

// UpsertDeviceReading refreshes a device's snapshot from one classified
// reading. Only the columns belonging to the reading's channel are touched,
// so the four channels accumulate independently.
func (d *DB) UpsertDeviceReading(ctx context.Context, r models.Reading, metrics map[string]float64) error {
	base := `
        INSERT INTO devices (device_id, last_seen, rpm) VALUES ($1, now(), $2)
        ON CONFLICT (device_id) DO UPDATE SET last_seen = now(), rpm = $2`
	if _, err := d.Pool.Exec(ctx, base, r.DeviceID, r.RPM); err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", r.DeviceID, err)
	}

	var query string
	var args []interface{}
	switch classifier.NormalizeSensorType(r.SensorType) {
	case classifier.SensorVibration:
		query = `UPDATE devices SET health_score = $2, vib_fault = $3 WHERE device_id = $1`
		args = []interface{}{r.DeviceID, metricOrNil(metrics, "health_score"), r.FaultState}
	case classifier.SensorTemperature:
		query = `UPDATE devices SET temp_c = $2, temp_fault = $3 WHERE device_id = $1`
		args = []interface{}{r.DeviceID, metricOrNil(metrics, "temperature_c"), r.FaultState}
	case classifier.SensorCurrent:
		query = `UPDATE devices SET current_a = $2, current_fault = $3 WHERE device_id = $1`
		args = []interface{}{r.DeviceID, metricOrNil(metrics, "current_a"), r.FaultState}
	case classifier.SensorAcoustic:
		query = `UPDATE devices SET sound_db = $2, sound_fault = $3 WHERE device_id = $1`
		args = []interface{}{r.DeviceID, metricOrNil(metrics, "sound_db"), r.FaultState}
	default:
		return nil
	}
	if _, err := d.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update device %s channel: %w", r.DeviceID, err)
	}
	return nil
}

// ListDevices returns every known device ordered by id.
func (d *DB) ListDevices(ctx context.Context) ([]Device, error) {
	query := `
        SELECT device_id, last_seen, rpm, temp_c, current_a, sound_db, health_score,
               vib_fault, temp_fault, current_fault, sound_fault
        FROM devices
        ORDER BY device_id`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var list []Device
	for rows.Next() {
		var dev Device
		err := rows.Scan(&dev.DeviceID, &dev.LastSeen, &dev.RPM, &dev.TempC, &dev.CurrentA,
			&dev.SoundDB, &dev.HealthScore, &dev.VibFault, &dev.TempFault, &dev.CurrentFault, &dev.SoundFault)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		list = append(list, dev)
	}
	return list, rows.Err()
}

// RefreshDeviceLastSeen recomputes last-seen times from stored readings.
// Used by the analytics refresh to backfill devices that only exist in the
// raw table.
func (d *DB) RefreshDeviceLastSeen(ctx context.Context) error {
	query := `
        INSERT INTO devices (device_id, last_seen)
        SELECT device_id, MAX(ts_ingested_utc) FROM readings GROUP BY device_id
        ON CONFLICT (device_id) DO UPDATE
        SET last_seen = GREATEST(devices.last_seen, EXCLUDED.last_seen)`
	if _, err := d.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to refresh device list: %w", err)
	}
	return nil
}

func metricOrNil(metrics map[string]float64, key string) interface{} {
	if v, ok := metrics[key]; ok {
		return v
	}
	return nil
}
