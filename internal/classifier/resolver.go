package classifier

import (
	"encoding/json"
	"strconv"

	"telemetry-service/internal/models"
)

// fieldAliases lists, per sensor type, the ordered alias chain for every
// logical field the rules need. Earlier aliases win; each alias is checked at
// the reading's top level before its nested measurement map. A field whose
// chain resolves nothing stays absent, never defaulted to zero, since a
// silent zero would suppress low-bound rules.
var fieldAliases = map[SensorType]map[string][]string{
	SensorVibration: {
		"vibration_rms_g": {"vibration_rms_g", "vib_rms_g", "vibration_g", "vibration", "accel_mag", "accel", "value"},
		"health_score":    {"health_score", "health"},
	},
	SensorTemperature: {
		"temperature_c": {"temperature_c", "temp_c", "temperature", "value"},
	},
	SensorCurrent: {
		"current_a": {"current_a", "current", "amps", "value"},
	},
	SensorAcoustic: {
		"sound_db":        {"sound_db", "sound", "noise", "mic_rms", "value"},
		"rms_amp":         {"rms_amp", "sound_rms_amp"},
		"hf_energy_ratio": {"hf_energy_ratio", "sound_hf_ratio"},
	},
}

// resolveMetrics extracts every resolvable logical field for the sensor type.
// The returned map holds canonical field names only.
func resolveMetrics(st SensorType, r models.Reading) map[string]float64 {
	metrics := make(map[string]float64)
	for field, aliases := range fieldAliases[st] {
		if v, ok := resolveField(r, aliases); ok {
			metrics[field] = v
		}
	}
	return metrics
}

// resolveField walks the alias chain, top level first, then the measurement
// map. The first numerically convertible value wins.
func resolveField(r models.Reading, aliases []string) (float64, bool) {
	for _, alias := range aliases {
		if raw, ok := r.Fields[alias]; ok {
			if v, err := toFloat(raw); err == nil {
				return v, true
			}
		}
		if raw, ok := r.Measurement[alias]; ok {
			if v, err := toFloat(raw); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func toFloat(val interface{}) (float64, error) {
	switch t := val.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, errNotNumeric
	}
}
