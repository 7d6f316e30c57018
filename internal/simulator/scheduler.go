package simulator

import (
	"context"
	"time"

	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// Publish cadences in ticks. Staggered on purpose so the four channels are
// not bursty at the same instant.
const (
	cadenceVibration   = 1
	cadenceAcoustic    = 5
	cadenceCurrent     = 10
	cadenceTemperature = 15
)

// PublishFunc delivers one emitted telemetry document. At-least-once
// semantics are assumed by the scheduler; a failed publish never blocks the
// next tick's state advancement.
type PublishFunc func(t models.Telemetry) error

type deviceCommand struct {
	deviceID string
	cmd      models.Command
}

// Scheduler drives the simulation: one single-threaded loop advancing a
// monotonic tick counter and invoking each sensor model at its own cadence.
type Scheduler struct {
	devices  map[string]*Device
	order    []string
	drift    DriftParams
	interval time.Duration
	publish  PublishFunc
	logger   *logging.Logger
	commands chan deviceCommand
	tick     int64
}

// NewScheduler builds a scheduler over the given devices. Devices are
// processed in registration order within a tick; no cross-device ordering is
// guaranteed or needed.
func NewScheduler(devices []*Device, drift DriftParams, interval time.Duration, publish PublishFunc, logger *logging.Logger) *Scheduler {
	byID := make(map[string]*Device, len(devices))
	order := make([]string, 0, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
		order = append(order, d.ID)
	}
	return &Scheduler{
		devices:  byID,
		order:    order,
		drift:    drift,
		interval: interval,
		publish:  publish,
		logger:   logger,
		commands: make(chan deviceCommand, 64),
	}
}

// Queue hands a fault-injection command to the scheduler. It is applied at
// the start of the next tick, never mid-tick.
func (s *Scheduler) Queue(deviceID string, cmd models.Command) {
	select {
	case s.commands <- deviceCommand{deviceID: deviceID, cmd: cmd}:
	default:
		s.logger.Warnf("Command queue full, dropping command for %s", deviceID)
	}
}

// Run loops until ctx is cancelled. Each tick either fully completes and
// emits, or is never started; cancellation can not produce a partial
// emission.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("Scheduler stopped after %d ticks", s.tick)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start).Seconds()
			for _, t := range s.Advance(elapsed, now.UTC().Format(time.RFC3339Nano)) {
				if err := s.publish(t); err != nil {
					s.logger.Errorf("Publish failed for %s: %v", t.DeviceID, err)
				}
			}
		}
	}
}

// Advance performs one tick: applies queued commands, advances every
// device's state and returns the telemetry due this tick. State advancement
// happens regardless of what the caller does with the emissions.
func (s *Scheduler) Advance(elapsedSec float64, tsUTC string) []models.Telemetry {
	s.drainCommands()

	var out []models.Telemetry
	for _, id := range s.order {
		d := s.devices[id]

		// One RPM per device per tick, shared by all models below.
		rpm := EffectiveRPM(d.BaseRPM, elapsedSec, s.drift, d.rng)

		// Temperature integrates forward every tick even when not emitted.
		d.TempC = SimulateTemperature(d.TempC, d.TempFault, d.rng)

		if s.due(cadenceVibration) {
			vib := SimulateVibration(d.VibrationFault, rpm, elapsedSec, d.rng)
			out = append(out, s.envelope(d, rpm, tsUTC, func(t *models.Telemetry) {
				t.Mpu6050 = &vib
			}))
		}
		if s.due(cadenceAcoustic) {
			// The acoustic channel correlates with the machine's health
			// right now, not with the last emitted vibration sample.
			health := SimulateVibration(d.VibrationFault, rpm, elapsedSec, d.rng).HealthScore
			snd := SimulateAcoustic(d.SoundFault, health, d.rng)
			out = append(out, s.envelope(d, rpm, tsUTC, func(t *models.Telemetry) {
				t.Inmp441 = &snd
			}))
		}
		if s.due(cadenceCurrent) {
			cur := models.CurrentData{
				CurrentA:   SimulateCurrent(d.CurrentFault, rpm, d.rng),
				FaultState: d.CurrentFault,
			}
			out = append(out, s.envelope(d, rpm, tsUTC, func(t *models.Telemetry) {
				t.Sct013 = &cur
			}))
		}
		if s.due(cadenceTemperature) {
			tmp := models.TemperatureData{
				TemperatureC: d.TempC,
				FaultState:   d.TempFault,
			}
			out = append(out, s.envelope(d, rpm, tsUTC, func(t *models.Telemetry) {
				t.Ds18b20 = &tmp
			}))
		}
	}

	s.tick++
	return out
}

func (s *Scheduler) due(cadence int64) bool {
	return s.tick%cadence == 0
}

func (s *Scheduler) envelope(d *Device, rpm float64, tsUTC string, fill func(*models.Telemetry)) models.Telemetry {
	t := models.Telemetry{
		DeviceID: d.ID,
		TsUTC:    tsUTC,
		RPM:      round(rpm, 2),
	}
	fill(&t)
	return t
}

func (s *Scheduler) drainCommands() {
	for {
		select {
		case dc := <-s.commands:
			d, ok := s.devices[dc.deviceID]
			if !ok {
				s.logger.Warnf("Command for unregistered device %s dropped", dc.deviceID)
				continue
			}
			d.Apply(dc.cmd)
			s.logger.Infof("Applied command to %s: %+v", dc.deviceID, dc.cmd)
		default:
			return
		}
	}
}
