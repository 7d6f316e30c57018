package db

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. Indexes mirror the query paths:
// per-device time ranges and ingest-time scans.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS readings (
		id              BIGSERIAL PRIMARY KEY,
		device_id       TEXT NOT NULL,
		ts_utc          TIMESTAMPTZ,
		ts_ingested_utc TIMESTAMPTZ NOT NULL DEFAULT now(),
		rpm             DOUBLE PRECISION,
		sensor_type     TEXT NOT NULL,
		fault_state     TEXT,
		measurement     JSONB,
		mqtt_topic      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS readings_device_ingest_idx ON readings (device_id, ts_ingested_utc)`,
	`CREATE INDEX IF NOT EXISTS readings_ingest_idx ON readings (ts_ingested_utc)`,

	`CREATE TABLE IF NOT EXISTS anomalies (
		id          UUID PRIMARY KEY,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		device_id   TEXT NOT NULL,
		ts_utc      TIMESTAMPTZ,
		sensor_type TEXT NOT NULL,
		category    TEXT NOT NULL,
		reason      TEXT NOT NULL,
		rpm         DOUBLE PRECISION,
		fault_state TEXT,
		metrics     JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS anomalies_device_detected_idx ON anomalies (device_id, detected_at)`,

	`CREATE TABLE IF NOT EXISTS devices (
		device_id     TEXT PRIMARY KEY,
		last_seen     TIMESTAMPTZ NOT NULL,
		rpm           DOUBLE PRECISION,
		temp_c        DOUBLE PRECISION,
		current_a     DOUBLE PRECISION,
		sound_db      DOUBLE PRECISION,
		health_score  DOUBLE PRECISION,
		vib_fault     TEXT,
		temp_fault    TEXT,
		current_fault TEXT,
		sound_fault   TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS daily_summary (
		device_id           TEXT NOT NULL,
		day                 DATE NOT NULL,
		samples             BIGINT,
		avg_rpm             DOUBLE PRECISION,
		min_rpm             DOUBLE PRECISION,
		max_rpm             DOUBLE PRECISION,
		avg_temp_c          DOUBLE PRECISION,
		min_temp_c          DOUBLE PRECISION,
		max_temp_c          DOUBLE PRECISION,
		avg_current_a       DOUBLE PRECISION,
		min_current_a       DOUBLE PRECISION,
		max_current_a       DOUBLE PRECISION,
		avg_sound_db        DOUBLE PRECISION,
		min_health          DOUBLE PRECISION,
		avg_health          DOUBLE PRECISION,
		vib_fault_count     BIGINT,
		temp_fault_count    BIGINT,
		current_fault_count BIGINT,
		sound_fault_count   BIGINT,
		updated_utc         TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (device_id, day)
	)`,
}

// EnsureSchema creates tables and indexes if they do not exist yet.
// A failure here is fatal at startup, never tolerated at runtime.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
