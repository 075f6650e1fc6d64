package engine

const (
	EventMissionQueued EventType = iota + 1
	EventMissionStarted
	EventStepStarted
	EventStepFinished
	EventMissionCompleted
	EventMissionFailed
	EventMissionCancelled
	EventRobotConnected
	EventRobotDisconnected
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type MissionQueuedEvent struct {
	MissionID string
	Name      string
	Operation string
}

type MissionStartedEvent struct {
	MissionID string
}

type StepStartedEvent struct {
	MissionID string
	StepIndex int
	Kind      string
	Label     string
}

type StepFinishedEvent struct {
	MissionID string
	StepIndex int
	Kind      string
	Status    string
	Retries   int
}

type MissionCompletedEvent struct {
	MissionID string
	Warning   string
}

type MissionFailedEvent struct {
	MissionID  string
	FailedStep int
	Reason     string
}

type MissionCancelledEvent struct {
	MissionID string
	Reason    string
}

type ConnectionEvent struct {
	RobotID string
	Detail  string
}
