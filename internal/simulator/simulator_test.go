package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"telemetry-service/internal/models"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestSimulateVibration(t *testing.T) {
	t.Run("health score stays bounded", func(t *testing.T) {
		rng := newRNG()
		for i := 0; i < 500; i++ {
			v := SimulateVibration(FaultGrinding, 1450, float64(i), rng)
			assert.GreaterOrEqual(t, v.HealthScore, 0.0)
			assert.LessOrEqual(t, v.HealthScore, 100.0)
			assert.GreaterOrEqual(t, v.VibrationRMSG, 0.0)
		}
	})

	t.Run("bearing wear raises rms and lowers health", func(t *testing.T) {
		var normalSum, faultSum float64
		const n = 200
		rngA, rngB := newRNG(), newRNG()
		for i := 0; i < n; i++ {
			normalSum += SimulateVibration(FaultNormal, 1450, float64(i)+0.3, rngA).VibrationRMSG
			faultSum += SimulateVibration(FaultBearingWear, 1450, float64(i)+0.3, rngB).VibrationRMSG
		}
		assert.Greater(t, faultSum/n, normalSum/n)
	})

	t.Run("health decreases as rms increases", func(t *testing.T) {
		// The mapping is linear with a negative slope until it clamps.
		rng := newRNG()
		for i := 0; i < 100; i++ {
			v := SimulateVibration(FaultNormal, 1450, float64(i), rng)
			expected := clamp(100-v.VibrationRMSG*healthPerRMSG, 0, 100)
			assert.InDelta(t, expected, v.HealthScore, 0.01)
		}
	})

	t.Run("fault state echoed", func(t *testing.T) {
		v := SimulateVibration(FaultMisalignment, 1450, 1, newRNG())
		assert.Equal(t, FaultMisalignment, v.FaultState)
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a := SimulateVibration(FaultNormal, 1450, 3, newRNG())
		b := SimulateVibration(FaultNormal, 1450, 3, newRNG())
		assert.Equal(t, a, b)
	})
}

func TestSimulateTemperature(t *testing.T) {
	t.Run("overheating rises monotonically", func(t *testing.T) {
		rng := newRNG()
		temp := AmbientC
		for i := 0; i < 50; i++ {
			next := SimulateTemperature(temp, FaultOverheating, rng)
			assert.Greater(t, next, temp)
			temp = next
		}
	})

	t.Run("overheating outpaces cooling failure", func(t *testing.T) {
		rng := newRNG()
		hot, warm := AmbientC, AmbientC
		for i := 0; i < 50; i++ {
			hot = SimulateTemperature(hot, FaultOverheating, rng)
			warm = SimulateTemperature(warm, FaultCoolingFailure, rng)
		}
		assert.Greater(t, hot, warm)
	})

	t.Run("normal mode relaxes toward the band", func(t *testing.T) {
		rng := newRNG()
		temp := 90.0
		for i := 0; i < 300; i++ {
			temp = SimulateTemperature(temp, FaultNormal, rng)
		}
		assert.Less(t, temp, 50.0)
		assert.Greater(t, temp, 25.0)
	})
}

func TestSimulateCurrent(t *testing.T) {
	rng := newRNG()

	t.Run("never negative", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			assert.GreaterOrEqual(t, SimulateCurrent(FaultNormal, 0, rng), 0.0)
		}
	})

	t.Run("scales with rpm", func(t *testing.T) {
		var lowSum, highSum float64
		const n = 100
		for i := 0; i < n; i++ {
			lowSum += SimulateCurrent(FaultNormal, 725, rng)
			highSum += SimulateCurrent(FaultNormal, 1450, rng)
		}
		assert.Greater(t, highSum/n, lowSum/n)
	})

	t.Run("overload pins near the overload level", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			c := SimulateCurrent(FaultOverload, 1450, rng)
			assert.InDelta(t, overloadCurrentA, c, currentNoiseA+0.01)
		}
	})

	t.Run("imbalance inflates the baseline", func(t *testing.T) {
		var normalSum, faultSum float64
		const n = 200
		for i := 0; i < n; i++ {
			normalSum += SimulateCurrent(FaultNormal, 1450, rng)
			faultSum += SimulateCurrent(FaultImbalance, 1450, rng)
		}
		assert.Greater(t, faultSum/n, normalSum/n)
	})
}

func TestSimulateAcoustic(t *testing.T) {
	rng := newRNG()

	t.Run("ratios stay in unit range", func(t *testing.T) {
		for _, mode := range []string{FaultNormal, FaultBearingNoise, FaultGrinding} {
			for i := 0; i < 100; i++ {
				a := SimulateAcoustic(mode, 100, rng)
				assert.GreaterOrEqual(t, a.RMSAmp, 0.0)
				assert.LessOrEqual(t, a.RMSAmp, 1.0)
				assert.GreaterOrEqual(t, a.HFEnergyRatio, 0.0)
				assert.LessOrEqual(t, a.HFEnergyRatio, 1.0)
			}
		}
	})

	t.Run("degraded health adds audible noise", func(t *testing.T) {
		var healthySum, degradedSum float64
		const n = 200
		for i := 0; i < n; i++ {
			healthySum += SimulateAcoustic(FaultNormal, 100, rng).SoundDB
			degradedSum += SimulateAcoustic(FaultNormal, 40, rng).SoundDB
		}
		// 40 points below the knee at a gain of 0.15 dB/point.
		assert.InDelta(t, 6.0, degradedSum/n-healthySum/n, 1.0)
	})

	t.Run("grinding is louder than bearing noise", func(t *testing.T) {
		var bearingSum, grindingSum float64
		const n = 200
		for i := 0; i < n; i++ {
			bearingSum += SimulateAcoustic(FaultBearingNoise, 100, rng).SoundDB
			grindingSum += SimulateAcoustic(FaultGrinding, 100, rng).SoundDB
		}
		assert.Greater(t, grindingSum/n, bearingSum/n)
	})

	t.Run("hf ratio tracks the fault mode", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			assert.InDelta(t, hfRatioNormal, SimulateAcoustic(FaultNormal, 100, rng).HFEnergyRatio, hfRatioJitter+0.001)
			assert.InDelta(t, hfRatioBearing, SimulateAcoustic(FaultBearingNoise, 100, rng).HFEnergyRatio, hfRatioJitter+0.001)
			assert.InDelta(t, hfRatioGrinding, SimulateAcoustic(FaultGrinding, 100, rng).HFEnergyRatio, hfRatioJitter+0.001)
		}
	})
}

func TestEffectiveRPM(t *testing.T) {
	p := DefaultDriftParams()

	t.Run("stays within drift plus jitter envelope", func(t *testing.T) {
		rng := newRNG()
		base := 1450.0
		bound := base*p.Percent/100 + p.JitterRPM
		for i := 0; i < 500; i++ {
			rpm := EffectiveRPM(base, float64(i), p, rng)
			assert.InDelta(t, base, rpm, bound+0.001)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		rng := newRNG()
		for i := 0; i < 200; i++ {
			assert.GreaterOrEqual(t, EffectiveRPM(1, float64(i), p, rng), 0.0)
		}
	})

	t.Run("zero period disables the sinusoid", func(t *testing.T) {
		rng := newRNG()
		rpm := EffectiveRPM(1000, 30, DriftParams{Percent: 2, PeriodSec: 0, JitterRPM: 0}, rng)
		assert.Equal(t, 1000.0, rpm)
	})
}

func TestDeviceApply(t *testing.T) {
	d := NewDevice("EDGE_D001", 1450, 1)
	assert.Equal(t, FaultNormal, d.VibrationFault)
	assert.Equal(t, AmbientC, d.TempC)

	rpm := -200.0
	d.Apply(models.Command{
		Mode:       FaultBearingWear,
		RPM:        &rpm,
		TempFault:  FaultOverheating,
		SoundFault: FaultGrinding,
	})
	assert.Equal(t, FaultBearingWear, d.VibrationFault)
	assert.Equal(t, FaultOverheating, d.TempFault)
	assert.Equal(t, FaultNormal, d.CurrentFault)
	assert.Equal(t, FaultGrinding, d.SoundFault)
	assert.Equal(t, 0.0, d.BaseRPM)
}
