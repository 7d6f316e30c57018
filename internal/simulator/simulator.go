// Package simulator produces physically-plausible synthetic telemetry for a
// fleet of virtual devices: vibration, temperature, current and acoustic
// channels correlated through a shared rotational speed.
package simulator

import "math"

// Fault mode labels, one closed set per channel. "normal" is shared.
const (
	FaultNormal = "normal"

	FaultBearingWear  = "bearing_wear" // vibration
	FaultMisalignment = "misalignment" // vibration

	FaultOverheating    = "overheating"     // temperature
	FaultCoolingFailure = "cooling_failure" // temperature

	FaultOverload  = "overload"  // current
	FaultImbalance = "imbalance" // current

	FaultBearingNoise = "bearing_noise" // acoustic
	FaultGrinding     = "grinding"      // acoustic
)

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// round keeps a fixed number of decimals so downstream comparisons stay
// deterministic.
func round(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}

func rms(vals ...float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(vals)))
}
