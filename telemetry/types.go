package telemetry

import "time"

// Snapshot is the last known chassis state of the robot.
type Snapshot struct {
	RobotID      string    `json:"robot_id"`
	Online       bool      `json:"online"`
	MoveActive   bool      `json:"move_active"`
	WheelSpeed   float64   `json:"wheel_speed"`
	Busy         bool      `json:"busy"`
	JackUp       bool      `json:"jack_up"`
	Charging     bool      `json:"charging"`
	BatteryLevel float64   `json:"battery_level"`
	UpdatedAt    time.Time `json:"updated_at"`
}
