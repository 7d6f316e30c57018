package classifier

import "strings"

// SensorType is the canonical sensor channel identifier. Wire payloads carry
// either these names or the historical part numbers (MPU6050, DS18B20,
// SCT-013, INMP441); normalization happens once at the classification
// boundary.
type SensorType string

const (
	SensorVibration   SensorType = "VIBRATION"
	SensorTemperature SensorType = "TEMPERATURE"
	SensorCurrent     SensorType = "CURRENT"
	SensorAcoustic    SensorType = "ACOUSTIC"
	SensorUnknown     SensorType = ""
)

// NormalizeSensorType maps a raw sensor label to its canonical SensorType.
// Matching is case-insensitive and tolerates the legacy part-number
// spellings; anything unrecognized maps to SensorUnknown.
func NormalizeSensorType(raw string) SensorType {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "VIBRATION", "MPU6050":
		return SensorVibration
	case "TEMPERATURE", "DS18B20":
		return SensorTemperature
	case "CURRENT", "SCT-013", "SCT013":
		return SensorCurrent
	case "ACOUSTIC", "INMP441":
		return SensorAcoustic
	}
	// Historical payloads embed the part number inside longer labels.
	switch {
	case strings.Contains(s, "MPU"):
		return SensorVibration
	case strings.Contains(s, "DS18B20"):
		return SensorTemperature
	case strings.Contains(s, "SCT"):
		return SensorCurrent
	case strings.Contains(s, "INMP"):
		return SensorAcoustic
	}
	return SensorUnknown
}
