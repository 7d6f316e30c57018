package db

import (
	"context"
	"fmt"
	"time"
)

// RefreshDailySummary rebuilds per-device-per-day aggregates from the raw
// readings table. Re-running for the same day replaces the previous rollup.
func (d *DB) RefreshDailySummary(ctx context.Context) error {
	query := `
        INSERT INTO daily_summary (
            device_id, day, samples,
            avg_rpm, min_rpm, max_rpm,
            avg_temp_c, min_temp_c, max_temp_c,
            avg_current_a, min_current_a, max_current_a,
            avg_sound_db, min_health, avg_health,
            vib_fault_count, temp_fault_count, current_fault_count, sound_fault_count,
            updated_utc
        )
        SELECT
            device_id,
            ts_ingested_utc::date AS day,
            COUNT(*),
            ROUND(AVG(rpm)::numeric, 2), ROUND(MIN(rpm)::numeric, 2), ROUND(MAX(rpm)::numeric, 2),
            ROUND(AVG((measurement->>'temperature_c')::float) FILTER (WHERE measurement ? 'temperature_c')::numeric, 2),
            ROUND(MIN((measurement->>'temperature_c')::float) FILTER (WHERE measurement ? 'temperature_c')::numeric, 2),
            ROUND(MAX((measurement->>'temperature_c')::float) FILTER (WHERE measurement ? 'temperature_c')::numeric, 2),
            ROUND(AVG((measurement->>'current_a')::float) FILTER (WHERE measurement ? 'current_a')::numeric, 2),
            ROUND(MIN((measurement->>'current_a')::float) FILTER (WHERE measurement ? 'current_a')::numeric, 2),
            ROUND(MAX((measurement->>'current_a')::float) FILTER (WHERE measurement ? 'current_a')::numeric, 2),
            ROUND(AVG((measurement->>'sound_db')::float) FILTER (WHERE measurement ? 'sound_db')::numeric, 2),
            ROUND(MIN((measurement->>'health_score')::float) FILTER (WHERE measurement ? 'health_score')::numeric, 2),
            ROUND(AVG((measurement->>'health_score')::float) FILTER (WHERE measurement ? 'health_score')::numeric, 2),
            COUNT(*) FILTER (WHERE sensor_type = 'MPU6050' AND fault_state <> 'normal'),
            COUNT(*) FILTER (WHERE sensor_type = 'DS18B20' AND fault_state <> 'normal'),
            COUNT(*) FILTER (WHERE sensor_type = 'SCT-013' AND fault_state <> 'normal'),
            COUNT(*) FILTER (WHERE sensor_type = 'INMP441' AND fault_state <> 'normal'),
            $1
        FROM readings
        GROUP BY device_id, ts_ingested_utc::date
        ON CONFLICT (device_id, day) DO UPDATE SET
            samples = EXCLUDED.samples,
            avg_rpm = EXCLUDED.avg_rpm, min_rpm = EXCLUDED.min_rpm, max_rpm = EXCLUDED.max_rpm,
            avg_temp_c = EXCLUDED.avg_temp_c, min_temp_c = EXCLUDED.min_temp_c, max_temp_c = EXCLUDED.max_temp_c,
            avg_current_a = EXCLUDED.avg_current_a, min_current_a = EXCLUDED.min_current_a, max_current_a = EXCLUDED.max_current_a,
            avg_sound_db = EXCLUDED.avg_sound_db, min_health = EXCLUDED.min_health, avg_health = EXCLUDED.avg_health,
            vib_fault_count = EXCLUDED.vib_fault_count,
            temp_fault_count = EXCLUDED.temp_fault_count,
            current_fault_count = EXCLUDED.current_fault_count,
            sound_fault_count = EXCLUDED.sound_fault_count,
            updated_utc = EXCLUDED.updated_utc`
	if _, err := d.Pool.Exec(ctx, query, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to refresh daily summary: %w", err)
	}
	return nil
}
