package classifier

import (
	"errors"
	"fmt"

	"telemetry-service/internal/models"
)

var errNotNumeric = errors.New("value is not numeric")

// Category identifies which rule produced a verdict.
type Category string

const (
	CategoryNormal          Category = "normal"
	CategoryHighVibration   Category = "high_vibration"
	CategoryLowHealth       Category = "low_health"
	CategoryHighTemperature Category = "high_temperature"
	CategoryLowTemperature  Category = "low_temperature"
	CategoryHighCurrent     Category = "high_current"
	CategoryLowCurrent      Category = "low_current"
	CategoryHighSound       Category = "high_sound"
	CategoryHighAmplitude   Category = "high_amplitude"
	CategoryUnknownSensor   Category = "unknown_sensor"
	CategoryNoRule          Category = "no_rule"
)

// Verdict is the classification result for one Reading.
type Verdict struct {
	IsAnomaly bool               `json:"is_anomaly"`
	Category  Category           `json:"category"`
	Reason    string             `json:"reason"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// rule is one threshold check. Rules for a sensor type are evaluated in
// order; the first hit wins and evaluation stops. A rule whose field did not
// resolve is skipped.
type rule struct {
	category Category
	field    string
	check    func(v float64, t Thresholds) (bool, string)
}

var sensorRules = map[SensorType][]rule{
	SensorVibration: {
		{CategoryHighVibration, "vibration_rms_g", func(v float64, t Thresholds) (bool, string) {
			return v >= t.VibRMSHigh, fmt.Sprintf("vibration_rms_g %v >= threshold %v", v, t.VibRMSHigh)
		}},
		{CategoryLowHealth, "health_score", func(v float64, t Thresholds) (bool, string) {
			return v <= t.HealthScoreLow, fmt.Sprintf("health_score %v <= threshold %v", v, t.HealthScoreLow)
		}},
	},
	SensorTemperature: {
		{CategoryLowTemperature, "temperature_c", func(v float64, t Thresholds) (bool, string) {
			return v < t.TempCLow, fmt.Sprintf("temperature_c %v < threshold %v", v, t.TempCLow)
		}},
		{CategoryHighTemperature, "temperature_c", func(v float64, t Thresholds) (bool, string) {
			return v > t.TempCHigh, fmt.Sprintf("temperature_c %v > threshold %v", v, t.TempCHigh)
		}},
	},
	SensorCurrent: {
		{CategoryLowCurrent, "current_a", func(v float64, t Thresholds) (bool, string) {
			return v < t.CurrentALow, fmt.Sprintf("current_a %v < threshold %v", v, t.CurrentALow)
		}},
		{CategoryHighCurrent, "current_a", func(v float64, t Thresholds) (bool, string) {
			return v > t.CurrentAHigh, fmt.Sprintf("current_a %v > threshold %v", v, t.CurrentAHigh)
		}},
	},
	SensorAcoustic: {
		{CategoryHighSound, "sound_db", func(v float64, t Thresholds) (bool, string) {
			return v >= t.SoundDBHigh, fmt.Sprintf("sound_db %v >= threshold %v", v, t.SoundDBHigh)
		}},
		{CategoryHighAmplitude, "rms_amp", func(v float64, t Thresholds) (bool, string) {
			return v >= t.RMSAmpHigh, fmt.Sprintf("rms_amp %v >= threshold %v", v, t.RMSAmpHigh)
		}},
	},
}

// Classify evaluates one Reading against the threshold set. It is pure:
// the same reading and thresholds always produce the same verdict, and
// malformed input data degrades to unknown_sensor or no_rule rather than an
// error.
func Classify(r models.Reading, t Thresholds) Verdict {
	st := NormalizeSensorType(r.SensorType)
	if st == SensorUnknown {
		return Verdict{
			IsAnomaly: false,
			Category:  CategoryUnknownSensor,
			Reason:    fmt.Sprintf("unrecognized sensor type %q", r.SensorType),
		}
	}

	metrics := resolveMetrics(st, r)

	evaluated := false
	for _, rl := range sensorRules[st] {
		v, ok := metrics[rl.field]
		if !ok {
			continue
		}
		evaluated = true
		if hit, reason := rl.check(v, t); hit {
			return Verdict{
				IsAnomaly: true,
				Category:  rl.category,
				Reason:    reason,
				Metrics:   metrics,
			}
		}
	}

	if !evaluated {
		return Verdict{
			IsAnomaly: false,
			Category:  CategoryNoRule,
			Reason:    fmt.Sprintf("no classifiable fields resolved for sensor %s", st),
			Metrics:   metrics,
		}
	}

	return Verdict{
		IsAnomaly: false,
		Category:  CategoryNormal,
		Reason:    "all thresholds satisfied",
		Metrics:   metrics,
	}
}
