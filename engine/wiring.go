package engine

import (
	"missioncore/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Persist every lifecycle transition, then stage the outbound
	// message in the outbox. The drainer gets it to Kafka.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MissionQueuedEvent)
		e.logFn("engine: mission %s queued (%s)", ev.MissionID, ev.Operation)
		e.stageOutbox("mission_queued", ev.MissionID, messaging.MissionQueued{
			MissionID: ev.MissionID,
			Name:      ev.Name,
			Operation: ev.Operation,
		})
	}, EventMissionQueued)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MissionStartedEvent)
		if err := e.db.UpdateMissionStatus(ev.MissionID, "running", ""); err != nil {
			e.logFn("engine: persist mission %s running: %v", ev.MissionID, err)
		}
		e.stageOutbox("mission_started", ev.MissionID, messaging.MissionStarted{MissionID: ev.MissionID})
	}, EventMissionStarted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(StepStartedEvent)
		if err := e.db.UpdateMissionStep(ev.MissionID, ev.StepIndex, "running", 0); err != nil {
			e.logFn("engine: persist step %s/%d running: %v", ev.MissionID, ev.StepIndex, err)
		}
	}, EventStepStarted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(StepFinishedEvent)
		if err := e.db.UpdateMissionStep(ev.MissionID, ev.StepIndex, ev.Status, ev.Retries); err != nil {
			e.logFn("engine: persist step %s/%d: %v", ev.MissionID, ev.StepIndex, err)
		}
		e.stageOutbox("step_finished", ev.MissionID, messaging.StepFinished{
			MissionID: ev.MissionID,
			StepIndex: ev.StepIndex,
			Kind:      ev.Kind,
			Status:    ev.Status,
			Retries:   ev.Retries,
		})
	}, EventStepFinished)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MissionCompletedEvent)
		if ev.Warning != "" {
			e.logFn("engine: mission %s completed with warning: %s", ev.MissionID, ev.Warning)
		} else {
			e.logFn("engine: mission %s completed", ev.MissionID)
		}
		if err := e.db.FinishMission(ev.MissionID, "completed", -1, ev.Warning, ""); err != nil {
			e.logFn("engine: persist mission %s completed: %v", ev.MissionID, err)
		}
		e.stageOutbox("mission_completed", ev.MissionID, messaging.MissionCompleted{
			MissionID: ev.MissionID,
			Warning:   ev.Warning,
		})
	}, EventMissionCompleted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MissionFailedEvent)
		e.logFn("engine: mission %s failed at step %d: %s", ev.MissionID, ev.FailedStep, ev.Reason)
		if err := e.db.FinishMission(ev.MissionID, "failed", ev.FailedStep, "", ev.Reason); err != nil {
			e.logFn("engine: persist mission %s failed: %v", ev.MissionID, err)
		}
		e.stageOutbox("mission_failed", ev.MissionID, messaging.MissionFailed{
			MissionID:  ev.MissionID,
			FailedStep: ev.FailedStep,
			Reason:     ev.Reason,
		})
	}, EventMissionFailed)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MissionCancelledEvent)
		e.logFn("engine: mission %s cancelled: %s", ev.MissionID, ev.Reason)
		if err := e.db.FinishMission(ev.MissionID, "cancelled", -1, "", ev.Reason); err != nil {
			e.logFn("engine: persist mission %s cancelled: %v", ev.MissionID, err)
		}
		e.stageOutbox("mission_cancelled", ev.MissionID, messaging.MissionCancelled{
			MissionID: ev.MissionID,
			Reason:    ev.Reason,
		})
	}, EventMissionCancelled)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		online := evt.Type == EventRobotConnected
		e.stageOutbox("robot_connectivity", "", messaging.RobotConnectivity{
			RobotID: ev.RobotID,
			Online:  online,
			Reason:  ev.Detail,
		})
	}, EventRobotConnected, EventRobotDisconnected)
}

// stageOutbox wraps a payload in an envelope and persists it for the
// drainer. Failures are logged; the in-memory event already happened.
func (e *Engine) stageOutbox(msgType, missionID string, payload any) {
	env := messaging.NewEnvelope(msgType, e.cfg.Messaging.StationID, payload)
	data, err := env.Encode()
	if err != nil {
		e.logFn("engine: encode %s envelope: %v", msgType, err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.MissionsTopic, data, msgType, missionID); err != nil {
		e.logFn("engine: enqueue %s outbox: %v", msgType, err)
	}
}
