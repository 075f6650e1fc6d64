package messaging

import "time"

// Envelope is the typed wrapper for all outbound mission messages.
type Envelope struct {
	MsgType   string    `json:"msg_type"`
	MsgID     string    `json:"msg_id"`
	StationID string    `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// --- Outbound payloads (missioncore -> downstream consumers) ---

type MissionQueued struct {
	MissionID string `json:"mission_id"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
}

type MissionStarted struct {
	MissionID string `json:"mission_id"`
}

type StepFinished struct {
	MissionID string `json:"mission_id"`
	StepIndex int    `json:"step_index"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Retries   int    `json:"retries"`
}

type MissionCompleted struct {
	MissionID string `json:"mission_id"`
	Warning   string `json:"warning,omitempty"`
}

type MissionFailed struct {
	MissionID  string `json:"mission_id"`
	FailedStep int    `json:"failed_step"`
	Reason     string `json:"reason"`
}

type MissionCancelled struct {
	MissionID string `json:"mission_id"`
	Reason    string `json:"reason"`
}

type RobotConnectivity struct {
	RobotID string `json:"robot_id"`
	Online  bool   `json:"online"`
	Reason  string `json:"reason,omitempty"`
}
