package engine

import (
	"missioncore/mission"
)

// missionEmitter bridges the mission package's emitter interface to the EventBus.
type missionEmitter struct {
	bus *EventBus
}

func (e *missionEmitter) EmitMissionQueued(missionID, name string, op mission.OperationType) {
	e.bus.Emit(Event{Type: EventMissionQueued, Payload: MissionQueuedEvent{
		MissionID: missionID,
		Name:      name,
		Operation: string(op),
	}})
}

func (e *missionEmitter) EmitMissionStarted(missionID string) {
	e.bus.Emit(Event{Type: EventMissionStarted, Payload: MissionStartedEvent{MissionID: missionID}})
}

func (e *missionEmitter) EmitStepStarted(missionID string, idx int, kind mission.StepKind, label string) {
	e.bus.Emit(Event{Type: EventStepStarted, Payload: StepStartedEvent{
		MissionID: missionID,
		StepIndex: idx,
		Kind:      string(kind),
		Label:     label,
	}})
}

func (e *missionEmitter) EmitStepFinished(missionID string, idx int, kind mission.StepKind, status mission.StepStatus, retries int) {
	e.bus.Emit(Event{Type: EventStepFinished, Payload: StepFinishedEvent{
		MissionID: missionID,
		StepIndex: idx,
		Kind:      string(kind),
		Status:    string(status),
		Retries:   retries,
	}})
}

func (e *missionEmitter) EmitMissionCompleted(missionID, warning string) {
	e.bus.Emit(Event{Type: EventMissionCompleted, Payload: MissionCompletedEvent{
		MissionID: missionID,
		Warning:   warning,
	}})
}

func (e *missionEmitter) EmitMissionFailed(missionID string, failedStep int, reason string) {
	e.bus.Emit(Event{Type: EventMissionFailed, Payload: MissionFailedEvent{
		MissionID:  missionID,
		FailedStep: failedStep,
		Reason:     reason,
	}})
}

func (e *missionEmitter) EmitMissionCancelled(missionID, reason string) {
	e.bus.Emit(Event{Type: EventMissionCancelled, Payload: MissionCancelledEvent{
		MissionID: missionID,
		Reason:    reason,
	}})
}

// telemetryEmitter bridges robot connectivity transitions to the EventBus.
type telemetryEmitter struct {
	bus *EventBus
}

func (e *telemetryEmitter) EmitRobotConnected(robotID string) {
	e.bus.Emit(Event{Type: EventRobotConnected, Payload: ConnectionEvent{RobotID: robotID, Detail: "robot connected"}})
}

func (e *telemetryEmitter) EmitRobotDisconnected(robotID, reason string) {
	e.bus.Emit(Event{Type: EventRobotDisconnected, Payload: ConnectionEvent{RobotID: robotID, Detail: reason}})
}
