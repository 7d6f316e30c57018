package models

// Command is a fault-injection message received on a device's cmd topic.
// Absent fields leave the corresponding device state untouched.
type Command struct {
	Mode         string   `json:"mode,omitempty"` // vibration fault mode
	RPM          *float64 `json:"rpm,omitempty"`
	TempFault    string   `json:"temp_fault,omitempty"`
	CurrentFault string   `json:"current_fault,omitempty"`
	SoundFault   string   `json:"sound_fault,omitempty"`
}
