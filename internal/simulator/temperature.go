package simulator

import "math/rand"

const (
	AmbientC = 30.0

	tempNormalMinC      = 28.0
	tempNormalMaxC      = 45.0
	tempRiseRateCPerSec = 0.05

	overheatingFactor    = 3.0
	coolingFailureFactor = 1.5

	// First-order low-pass gain pulling the temperature toward a fresh
	// random target inside the normal band.
	tempRelaxGain = 0.05
)

// SimulateTemperature models a DS18B20 probe. Unlike the other models it is
// stateful: the caller feeds the previous estimate back in on every tick.
// Fault modes push the temperature up monotonically, overheating faster than
// cooling_failure.
func SimulateTemperature(tempC float64, mode string, rng *rand.Rand) float64 {
	switch mode {
	case FaultOverheating:
		tempC += tempRiseRateCPerSec * overheatingFactor
	case FaultCoolingFailure:
		tempC += tempRiseRateCPerSec * coolingFailureFactor
	default:
		target := uniform(rng, tempNormalMinC, tempNormalMaxC)
		tempC += (target - tempC) * tempRelaxGain
	}
	return round(tempC, 2)
}
