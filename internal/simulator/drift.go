package simulator

import (
	"math"
	"math/rand"
)

// DriftParams tunes the slow periodic RPM variation and tick-level jitter.
type DriftParams struct {
	Percent   float64 // peak drift as a percentage of base RPM
	PeriodSec float64 // drift sine period
	JitterRPM float64 // uniform jitter amplitude
}

// DefaultDriftParams matches the production device profile.
func DefaultDriftParams() DriftParams {
	return DriftParams{Percent: 2.0, PeriodSec: 120.0, JitterRPM: 5.0}
}

// EffectiveRPM computes the rotational speed for one tick. The same value is
// passed to every sensor model invoked that tick so the channels stay
// mutually consistent. Never negative.
func EffectiveRPM(base, elapsedSec float64, p DriftParams, rng *rand.Rand) float64 {
	var drift float64
	if p.PeriodSec > 0 {
		drift = base * (p.Percent / 100) * math.Sin(2*math.Pi*elapsedSec/p.PeriodSec)
	}
	jitter := uniform(rng, -p.JitterRPM, p.JitterRPM)
	return math.Max(0, base+drift+jitter)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func gauss(rng *rand.Rand, sigma float64) float64 {
	return rng.NormFloat64() * sigma
}
