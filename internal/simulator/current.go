package simulator

import (
	"math"
	"math/rand"
)

const (
	ratedCurrentA    = 8.0
	ratedRPM         = 1450.0
	overloadCurrentA = 13.0
	currentNoiseA    = 0.25
)

// SimulateCurrent models an SCT-013 clamp. Baseline current scales linearly
// with RPM against the rated pair; overload pins the output, imbalance
// inflates it by a random factor. The result is clamped to non-negative.
func SimulateCurrent(mode string, rpm float64, rng *rand.Rand) float64 {
	base := ratedCurrentA * (rpm / ratedRPM)

	var current float64
	switch mode {
	case FaultOverload:
		current = overloadCurrentA
	case FaultImbalance:
		current = base * uniform(rng, 1.2, 1.5)
	default:
		current = base
	}

	current += uniform(rng, -currentNoiseA, currentNoiseA)
	return round(math.Max(current, 0), 2)
}
