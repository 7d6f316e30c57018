package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

func newTestScheduler(t *testing.T, devices ...*Device) *Scheduler {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return NewScheduler(devices, DefaultDriftParams(), time.Second, nil, logger)
}

// blocks summarizes which sensor blocks one Advance emitted.
func blocks(out []models.Telemetry) map[string]int {
	counts := make(map[string]int)
	for _, t := range out {
		if t.Mpu6050 != nil {
			counts["vibration"]++
		}
		if t.Ds18b20 != nil {
			counts["temperature"]++
		}
		if t.Sct013 != nil {
			counts["current"]++
		}
		if t.Inmp441 != nil {
			counts["acoustic"]++
		}
	}
	return counts
}

func TestSchedulerCadences(t *testing.T) {
	s := newTestScheduler(t, NewDevice("EDGE_D001", 1450, 7))

	perTick := make([]map[string]int, 0, 16)
	for tick := 0; tick < 16; tick++ {
		out := s.Advance(float64(tick), "2026-08-26T10:00:00Z")
		perTick = append(perTick, blocks(out))
	}

	// Every cadence lines up on tick 0.
	assert.Equal(t, map[string]int{"vibration": 1, "temperature": 1, "current": 1, "acoustic": 1}, perTick[0])

	// Vibration is emitted every tick.
	for tick, counts := range perTick {
		assert.Equal(t, 1, counts["vibration"], "tick %d", tick)
	}

	assert.Equal(t, 1, perTick[5]["acoustic"])
	assert.Zero(t, perTick[4]["acoustic"])
	assert.Equal(t, 1, perTick[10]["current"])
	assert.Zero(t, perTick[9]["current"])
	assert.Equal(t, 1, perTick[15]["temperature"])
	assert.Zero(t, perTick[14]["temperature"])

	// Tick 15 is also an acoustic tick but not a current tick.
	assert.Equal(t, 1, perTick[15]["acoustic"])
	assert.Zero(t, perTick[15]["current"])
}

func TestSchedulerEnvelope(t *testing.T) {
	s := newTestScheduler(t, NewDevice("EDGE_D001", 1450, 7))
	out := s.Advance(0, "2026-08-26T10:00:00Z")
	require.NotEmpty(t, out)

	for _, tel := range out {
		assert.Equal(t, "EDGE_D001", tel.DeviceID)
		assert.Equal(t, "2026-08-26T10:00:00Z", tel.TsUTC)
		assert.Greater(t, tel.RPM, 0.0)
	}
}

func TestSchedulerMultipleDevices(t *testing.T) {
	s := newTestScheduler(t,
		NewDevice("EDGE_D001", 1450, 1),
		NewDevice("EDGE_D002", 900, 2),
	)

	out := s.Advance(0, "2026-08-26T10:00:00Z")
	seen := make(map[string]int)
	for _, tel := range out {
		seen[tel.DeviceID]++
	}
	assert.Equal(t, 4, seen["EDGE_D001"])
	assert.Equal(t, 4, seen["EDGE_D002"])
}

func TestSchedulerCommandApplied(t *testing.T) {
	d := NewDevice("EDGE_D001", 1450, 7)
	s := newTestScheduler(t, d)

	s.Queue("EDGE_D001", models.Command{Mode: FaultBearingWear, SoundFault: FaultGrinding})
	out := s.Advance(0, "2026-08-26T10:00:00Z")

	assert.Equal(t, FaultBearingWear, d.VibrationFault)
	assert.Equal(t, FaultGrinding, d.SoundFault)

	counts := 0
	for _, tel := range out {
		if tel.Mpu6050 != nil {
			assert.Equal(t, FaultBearingWear, tel.Mpu6050.FaultState)
			counts++
		}
		if tel.Inmp441 != nil {
			assert.Equal(t, FaultGrinding, tel.Inmp441.FaultState)
			counts++
		}
	}
	assert.Equal(t, 2, counts)
}

func TestSchedulerCommandForUnknownDeviceIgnored(t *testing.T) {
	d := NewDevice("EDGE_D001", 1450, 7)
	s := newTestScheduler(t, d)

	s.Queue("EDGE_D999", models.Command{Mode: FaultGrinding})
	s.Advance(0, "2026-08-26T10:00:00Z")

	assert.Equal(t, FaultNormal, d.VibrationFault)
}

func TestSchedulerTemperatureIntegratesEveryTick(t *testing.T) {
	d := NewDevice("EDGE_D001", 1450, 7)
	s := newTestScheduler(t, d)
	s.Queue("EDGE_D001", models.Command{TempFault: FaultOverheating})

	start := d.TempC
	for tick := 0; tick < 15; tick++ {
		s.Advance(float64(tick), "2026-08-26T10:00:00Z")
	}
	// 15 ticks at 0.15 C/tick, integrated even on non-emitting ticks.
	assert.InDelta(t, start+15*tempRiseRateCPerSec*overheatingFactor, d.TempC, 0.05)
}
