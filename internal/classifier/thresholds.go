package classifier

// Thresholds is the static bounds table consulted during classification.
// It is loaded once at startup and never mutated afterwards.
type Thresholds struct {
	VibRMSHigh     float64 // g, anomalous at or above
	HealthScoreLow float64 // 0..100, anomalous at or below
	TempCLow       float64 // °C, anomalous below
	TempCHigh      float64 // °C, anomalous above
	CurrentALow    float64 // A, anomalous below
	CurrentAHigh   float64 // A, anomalous above
	SoundDBHigh    float64 // dB, anomalous at or above
	RMSAmpHigh     float64 // 0..1, anomalous at or above
}

// DefaultThresholds returns the production bounds used when no environment
// overrides are present.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VibRMSHigh:     0.055,
		HealthScoreLow: 70,
		TempCLow:       0,
		TempCHigh:      80,
		CurrentALow:    0.1,
		CurrentAHigh:   15,
		SoundDBHigh:    80,
		RMSAmpHigh:     0.8,
	}
}
