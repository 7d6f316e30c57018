package simulator

import (
	"math"
	"math/rand"

	"telemetry-service/internal/models"
)

// Device is the mutable per-device simulation state. It is owned exclusively
// by the scheduler goroutine: temperature integrates forward once per tick
// and fault modes change only via Apply.
type Device struct {
	ID      string
	BaseRPM float64
	TempC   float64

	VibrationFault string
	TempFault      string
	CurrentFault   string
	SoundFault     string

	rng *rand.Rand
}

// NewDevice registers a device starting at ambient temperature with all
// channels healthy. The seed keeps a device's noise reproducible in tests.
func NewDevice(id string, baseRPM float64, seed int64) *Device {
	return &Device{
		ID:             id,
		BaseRPM:        math.Max(0, baseRPM),
		TempC:          AmbientC,
		VibrationFault: FaultNormal,
		TempFault:      FaultNormal,
		CurrentFault:   FaultNormal,
		SoundFault:     FaultNormal,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Apply merges a fault-injection command into the device state. RPM is
// floored at zero; fault labels are taken as-is since an unknown label
// behaves like normal operation in every model.
func (d *Device) Apply(cmd models.Command) {
	if cmd.Mode != "" {
		d.VibrationFault = cmd.Mode
	}
	if cmd.RPM != nil {
		d.BaseRPM = math.Max(0, *cmd.RPM)
	}
	if cmd.TempFault != "" {
		d.TempFault = cmd.TempFault
	}
	if cmd.CurrentFault != "" {
		d.CurrentFault = cmd.CurrentFault
	}
	if cmd.SoundFault != "" {
		d.SoundFault = cmd.SoundFault
	}
}
