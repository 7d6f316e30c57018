package models

// VibrationData carries MPU6050 accelerometer features.
type VibrationData struct {
	AxG           float64 `json:"ax_g"`
	AyG           float64 `json:"ay_g"`
	AzG           float64 `json:"az_g"`
	VibrationRMSG float64 `json:"vibration_rms_g"`
	HealthScore   float64 `json:"health_score"`
	FaultState    string  `json:"fault_state"`
}

// TemperatureData carries a DS18B20 probe sample.
type TemperatureData struct {
	TemperatureC float64 `json:"temperature_c"`
	FaultState   string  `json:"fault_state"`
}

// CurrentData carries an SCT-013 clamp sample.
type CurrentData struct {
	CurrentA   float64 `json:"current_a"`
	FaultState string  `json:"fault_state"`
}

// AcousticData carries INMP441 acoustic features (never raw audio).
type AcousticData struct {
	SoundDB       float64 `json:"sound_db"`
	RMSAmp        float64 `json:"rms_amp"`
	HFEnergyRatio float64 `json:"hf_energy_ratio"`
	FaultState    string  `json:"fault_state"`
}

// Telemetry is the wire document a device publishes. Sensor blocks are
// optional because each channel has its own publish cadence.
type Telemetry struct {
	DeviceID string           `json:"device_id"`
	TsUTC    string           `json:"ts_utc"`
	RPM      float64          `json:"rpm"`
	Mpu6050  *VibrationData   `json:"mpu6050,omitempty"`
	Ds18b20  *TemperatureData `json:"ds18b20,omitempty"`
	Sct013   *CurrentData     `json:"sct013,omitempty"`
	Inmp441  *AcousticData    `json:"inmp441,omitempty"`
}
