package models

import (
	"encoding/json"
	"fmt"
)

// Reading is one timestamped measurement for one device and one sensor
// channel. It is the unit exchanged between the collector, the Kafka bridge
// and the classifier.
type Reading struct {
	DeviceID    string                 `json:"device_id"`
	Timestamp   string                 `json:"ts_utc"`
	RPM         float64                `json:"rpm"`
	SensorType  string                 `json:"sensor_type"`
	FaultState  string                 `json:"fault_state,omitempty"`
	Measurement map[string]interface{} `json:"measurement,omitempty"`
	Topic       string                 `json:"mqtt_topic,omitempty"`
	IngestedAt  string                 `json:"ts_ingested_utc,omitempty"`

	// Fields keeps unrecognized top-level entries from payloads that also
	// carry a measurement map, so top-level values keep precedence during
	// alias resolution. Flat payloads without a measurement map store their
	// fields in Measurement instead, which survives re-serialization.
	Fields map[string]interface{} `json:"-"`
}

// sensorBlocks maps the nested document keys of the combined telemetry shape
// to the sensor names historically used on the wire.
var sensorBlocks = []struct {
	key   string
	label string
}{
	{"mpu6050", "MPU6050"},
	{"ds18b20", "DS18B20"},
	{"sct013", "SCT-013"},
	{"inmp441", "INMP441"},
}

// envelope keys that are not measurement fields in any payload shape.
var envelopeKeys = map[string]bool{
	"device_id": true, "ts_utc": true, "timestamp_utc": true, "timestamp": true,
	"rpm": true, "sensor": true, "sensor_type": true, "data": true,
	"measurement": true, "mqtt_topic": true, "ts_ingested_utc": true,
}

// ParseReadings decodes a telemetry payload into one Reading per sensor
// channel. It accepts the combined multi-sensor document, the per-sensor
// document with a "sensor" discriminator and nested "data", and the legacy
// flat shape. A payload with no recognizable sensor yields one Reading with
// an empty SensorType so the classifier can report it instead of dropping it.
func ParseReadings(topic string, payload []byte) ([]Reading, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid telemetry JSON: %w", err)
	}

	base := Reading{Topic: topic}
	if id, ok := doc["device_id"].(string); ok && id != "" {
		base.DeviceID = id
	} else {
		base.DeviceID = "unknown"
	}
	for _, key := range []string{"ts_utc", "timestamp_utc", "timestamp"} {
		if ts, ok := doc[key].(string); ok && ts != "" {
			base.Timestamp = ts
			break
		}
	}
	if rpm, ok := doc["rpm"].(float64); ok {
		base.RPM = rpm
	}

	// Combined shape: one reading per present sensor block.
	var out []Reading
	for _, block := range sensorBlocks {
		m, ok := doc[block.key].(map[string]interface{})
		if !ok {
			continue
		}
		r := base
		r.SensorType = block.label
		r.Measurement = m
		if fs, ok := m["fault_state"].(string); ok {
			r.FaultState = fs
		}
		out = append(out, r)
	}
	if len(out) > 0 {
		return out, nil
	}

	// Per-sensor shape with discriminator, nested or flat.
	r := base
	if s, ok := doc["sensor"].(string); ok {
		r.SensorType = s
	} else if s, ok := doc["sensor_type"].(string); ok {
		r.SensorType = s
	}
	if data, ok := doc["data"].(map[string]interface{}); ok {
		r.Measurement = data
	} else if data, ok := doc["measurement"].(map[string]interface{}); ok {
		r.Measurement = data
	}
	if r.Measurement != nil {
		if fs, ok := r.Measurement["fault_state"].(string); ok {
			r.FaultState = fs
		}
	}
	if fs, ok := doc["fault_state"].(string); ok && r.FaultState == "" {
		r.FaultState = fs
	}

	// Leftover top-level fields. A flat payload has no measurement map, so
	// its leftovers become the measurement and survive the trip through the
	// stream and storage. When a measurement map exists the leftovers stay in
	// Fields, which wins during alias resolution.
	fields := make(map[string]interface{})
	for k, v := range doc {
		if !envelopeKeys[k] {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		if r.Measurement == nil {
			r.Measurement = fields
		} else {
			r.Fields = fields
		}
	}

	return []Reading{r}, nil
}

// Split breaks a combined Telemetry document into per-sensor Readings.
func (t Telemetry) Split() []Reading {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	readings, err := ParseReadings("", raw)
	if err != nil {
		return nil
	}
	return readings
}
