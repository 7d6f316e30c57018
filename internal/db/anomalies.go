package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/models"
)

// Anomaly is a persisted anomaly verdict joined with the reading context it
// was decided on.
type Anomaly struct {
	ID         uuid.UUID          `json:"id"`
	DetectedAt time.Time          `json:"detected_at"`
	DeviceID   string             `json:"device_id"`
	TsUTC      *time.Time         `json:"ts_utc"`
	SensorType string             `json:"sensor_type"`
	Category   string             `json:"category"`
	Reason     string             `json:"reason"`
	RPM        float64            `json:"rpm"`
	FaultState string             `json:"fault_state"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// InsertAnomaly persists a verdict. Called only when is_anomaly is true.
func (d *DB) InsertAnomaly(ctx context.Context, r models.Reading, v classifier.Verdict) error {
	metrics, err := json.Marshal(v.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `
        INSERT INTO anomalies (id, device_id, ts_utc, sensor_type, category, reason, rpm, fault_state, metrics)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = d.Pool.Exec(ctx, query,
		uuid.New(),
		r.DeviceID,
		parseTimestamp(r.Timestamp),
		r.SensorType,
		string(v.Category),
		v.Reason,
		r.RPM,
		r.FaultState,
		metrics,
	)
	if err != nil {
		return fmt.Errorf("failed to insert anomaly: %w", err)
	}
	return nil
}

// GetAnomalies fetches anomalies newest first with pagination and an
// optional device filter (empty deviceID means all devices).
func (d *DB) GetAnomalies(ctx context.Context, deviceID string, limit, offset int) ([]Anomaly, int, error) {
	countQ := `SELECT COUNT(*) FROM anomalies`
	countArgs := []interface{}{}
	if deviceID != "" {
		countQ += ` WHERE device_id = $1`
		countArgs = append(countArgs, deviceID)
	}

	var total int
	if err := d.Pool.QueryRow(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count anomalies: %w", err)
	}

	query := `
        SELECT id, detected_at, device_id, ts_utc, sensor_type, category, reason, COALESCE(rpm, 0), COALESCE(fault_state, ''), metrics
        FROM anomalies`
	args := []interface{}{}
	if deviceID != "" {
		query += ` WHERE device_id = $1 ORDER BY detected_at DESC LIMIT $2 OFFSET $3`
		args = append(args, deviceID, limit, offset)
	} else {
		query += ` ORDER BY detected_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get anomalies: %w", err)
	}
	defer rows.Close()

	var list []Anomaly
	for rows.Next() {
		var a Anomaly
		var metrics []byte
		err := rows.Scan(&a.ID, &a.DetectedAt, &a.DeviceID, &a.TsUTC, &a.SensorType,
			&a.Category, &a.Reason, &a.RPM, &a.FaultState, &metrics)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &a.Metrics); err != nil {
				return nil, 0, fmt.Errorf("failed to decode metrics: %w", err)
			}
		}
		list = append(list, a)
	}

	return list, total, rows.Err()
}
