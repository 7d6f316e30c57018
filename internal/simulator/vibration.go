package simulator

import (
	"math"
	"math/rand"

	"telemetry-service/internal/models"
)

const (
	vibNoiseSigmaG = 0.02

	// Fault sinusoid amplitudes (g) and rotational-frequency multiples.
	bearingWearAmpG   = 0.06
	bearingWearFreqX  = 8.0
	misalignmentAmpG  = 0.05
	misalignmentFreqX = 2.0
	normalVibAmpG     = 0.03

	healthPerRMSG = 400.0
)

// SimulateVibration models an MPU6050 accelerometer. Three near-orthogonal
// axes carry gaussian noise (az biased by gravity) plus a fault-specific
// sinusoid at a small integer multiple of the rotational frequency. The
// derived health_score decreases linearly as vibration RMS increases; the
// acoustic model depends on that correlation.
func SimulateVibration(mode string, rpm, elapsedSec float64, rng *rand.Rand) models.VibrationData {
	f := rpm / 60.0 // Hz
	ax := gauss(rng, vibNoiseSigmaG)
	ay := gauss(rng, vibNoiseSigmaG)
	az := 1.0 + gauss(rng, vibNoiseSigmaG)

	switch mode {
	case FaultBearingWear:
		ax += bearingWearAmpG * math.Sin(2*math.Pi*bearingWearFreqX*f*elapsedSec)
		ay += bearingWearAmpG * math.Cos(2*math.Pi*bearingWearFreqX*f*elapsedSec)
	case FaultMisalignment:
		ax += misalignmentAmpG * math.Sin(2*math.Pi*misalignmentFreqX*f*elapsedSec)
		ay += misalignmentAmpG * math.Cos(2*math.Pi*misalignmentFreqX*f*elapsedSec)
	default:
		ax += normalVibAmpG * math.Sin(2*math.Pi*f*elapsedSec)
		ay += normalVibAmpG * math.Cos(2*math.Pi*f*elapsedSec)
	}

	vibRMS := rms(ax, ay, az-1.0)
	health := clamp(100-vibRMS*healthPerRMSG, 0, 100)

	return models.VibrationData{
		AxG:           round(ax, 5),
		AyG:           round(ay, 5),
		AzG:           round(az, 5),
		VibrationRMSG: round(vibRMS, 5),
		HealthScore:   round(health, 2),
		FaultState:    mode,
	}
}
