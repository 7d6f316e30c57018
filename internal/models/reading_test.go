package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingsCombinedShape(t *testing.T) {
	payload := []byte(`{
		"device_id": "EDGE_D001",
		"ts_utc": "2026-08-26T10:00:00Z",
		"rpm": 1448.2,
		"mpu6050": {"ax_g": 0.01, "ay_g": 0.02, "az_g": 1.01, "vibration_rms_g": 0.025, "health_score": 90.0, "fault_state": "normal"},
		"ds18b20": {"temperature_c": 36.5, "fault_state": "overheating"}
	}`)

	readings, err := ParseReadings("factory/EDGE_D001/telemetry", payload)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	vib, temp := readings[0], readings[1]
	assert.Equal(t, "MPU6050", vib.SensorType)
	assert.Equal(t, "EDGE_D001", vib.DeviceID)
	assert.Equal(t, "2026-08-26T10:00:00Z", vib.Timestamp)
	assert.Equal(t, 1448.2, vib.RPM)
	assert.Equal(t, "normal", vib.FaultState)
	assert.Equal(t, 0.025, vib.Measurement["vibration_rms_g"])
	assert.Equal(t, "factory/EDGE_D001/telemetry", vib.Topic)

	assert.Equal(t, "DS18B20", temp.SensorType)
	assert.Equal(t, "overheating", temp.FaultState)
	assert.Equal(t, 36.5, temp.Measurement["temperature_c"])
}

func TestParseReadingsDiscriminatorShape(t *testing.T) {
	payload := []byte(`{
		"device_id": "EDGE_D002",
		"timestamp_utc": "2026-08-26T10:00:05Z",
		"sensor": "INMP441",
		"data": {"sound_db": 82.1, "rms_amp": 0.7, "fault_state": "grinding"}
	}`)

	readings, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	r := readings[0]
	assert.Equal(t, "INMP441", r.SensorType)
	assert.Equal(t, "EDGE_D002", r.DeviceID)
	assert.Equal(t, "2026-08-26T10:00:05Z", r.Timestamp)
	assert.Equal(t, "grinding", r.FaultState)
	assert.Equal(t, 82.1, r.Measurement["sound_db"])
}

func TestParseReadingsLegacyFlatShape(t *testing.T) {
	payload := []byte(`{
		"device_id": "EDGE_D003",
		"timestamp": "2026-08-26T10:00:10Z",
		"sensor_type": "DS18B20",
		"temp_c": 47.3
	}`)

	readings, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	r := readings[0]
	assert.Equal(t, "DS18B20", r.SensorType)
	// Flat fields land in Measurement so they survive re-serialization.
	assert.Equal(t, 47.3, r.Measurement["temp_c"])
	assert.Nil(t, r.Fields)
}

func TestParseReadingsFlatShapeSurvivesRewire(t *testing.T) {
	// A flat reading forwarded over the stream is marshaled and parsed
	// again; the measurement value must come out the other side intact.
	payload := []byte(`{"device_id": "EDGE_D003", "sensor": "DS18B20", "datatype": "temperature_c", "value": 95.0}`)

	first, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 95.0, first[0].Measurement["value"])

	wire, err := json.Marshal(first[0])
	require.NoError(t, err)

	second, err := ParseReadings("", wire)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "DS18B20", second[0].SensorType)
	assert.Equal(t, 95.0, second[0].Measurement["value"])
}

func TestParseReadingsExtrasKeepTopLevelPrecedence(t *testing.T) {
	// When a measurement map is present, stray top-level fields stay in
	// Fields so alias resolution prefers them over the nested map.
	payload := []byte(`{
		"device_id": "EDGE_D002",
		"sensor": "DS18B20",
		"data": {"temperature_c": 30.0},
		"temperature_c": 50.0
	}`)

	readings, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 50.0, readings[0].Fields["temperature_c"])
	assert.Equal(t, 30.0, readings[0].Measurement["temperature_c"])
}

func TestParseReadingsUnrecognizedSensor(t *testing.T) {
	payload := []byte(`{"device_id": "EDGE_D004", "some_field": 1.0}`)

	readings, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Empty(t, readings[0].SensorType)
	assert.Equal(t, "EDGE_D004", readings[0].DeviceID)
}

func TestParseReadingsMissingDeviceID(t *testing.T) {
	payload := []byte(`{"sensor": "SCT-013", "data": {"current_a": 7.9}}`)

	readings, err := ParseReadings("", payload)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "unknown", readings[0].DeviceID)
}

func TestParseReadingsInvalidJSON(t *testing.T) {
	_, err := ParseReadings("", []byte("not json"))
	assert.Error(t, err)
}

func TestTelemetrySplit(t *testing.T) {
	tel := Telemetry{
		DeviceID: "EDGE_D001",
		TsUTC:    "2026-08-26T10:00:00Z",
		RPM:      1450,
		Sct013:   &CurrentData{CurrentA: 7.88, FaultState: "overload"},
		Inmp441:  &AcousticData{SoundDB: 63.2, RMSAmp: 0.387, HFEnergyRatio: 0.34, FaultState: "normal"},
	}

	readings := tel.Split()
	require.Len(t, readings, 2)
	assert.Equal(t, "SCT-013", readings[0].SensorType)
	assert.Equal(t, "overload", readings[0].FaultState)
	assert.Equal(t, "INMP441", readings[1].SensorType)
	assert.Equal(t, 63.2, readings[1].Measurement["sound_db"])
}
