package simulator

import (
	"math/rand"

	"telemetry-service/internal/models"
)

const (
	baselineDB = 55.0
	noiseDB    = 2.0

	bearingDBBoost  = 8.0
	grindingDBBoost = 12.0

	hfRatioNormal   = 0.35
	hfRatioBearing  = 0.65
	hfRatioGrinding = 0.80
	hfRatioJitter   = 0.05

	// dB per point of vibration health below 80.
	healthDeficitDBGain = 0.15
)

// SimulateAcoustic models an INMP441 microphone as spectral features, never
// raw waveform samples. vibHealth is the vibration model's health score for
// the same instant: a degraded machine is audibly noisier. rms_amp is a
// bounded pseudo-amplitude rescaled from the dB level.
func SimulateAcoustic(mode string, vibHealth float64, rng *rand.Rand) models.AcousticData {
	baseDB := baselineDB + uniform(rng, -noiseDB, noiseDB)
	if vibHealth < 80 {
		baseDB += (80 - vibHealth) * healthDeficitDBGain
	}

	var soundDB, hfRatio float64
	switch mode {
	case FaultBearingNoise:
		soundDB = baseDB + bearingDBBoost
		hfRatio = uniform(rng, hfRatioBearing-hfRatioJitter, hfRatioBearing+hfRatioJitter)
	case FaultGrinding:
		soundDB = baseDB + grindingDBBoost
		hfRatio = uniform(rng, hfRatioGrinding-hfRatioJitter, hfRatioGrinding+hfRatioJitter)
	default:
		soundDB = baseDB
		hfRatio = uniform(rng, hfRatioNormal-hfRatioJitter, hfRatioNormal+hfRatioJitter)
	}

	rmsAmp := clamp((soundDB-40)/60, 0, 1)

	return models.AcousticData{
		SoundDB:       round(soundDB, 2),
		RMSAmp:        round(rmsAmp, 3),
		HFEnergyRatio: round(clamp(hfRatio, 0, 1), 3),
		FaultState:    mode,
	}
}
