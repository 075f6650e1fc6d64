package mission

// Emitter is the interface adapters must satisfy to bridge mission
// lifecycle events to the engine.
type Emitter interface {
	EmitMissionQueued(missionID, name string, op OperationType)
	EmitMissionStarted(missionID string)
	EmitStepStarted(missionID string, idx int, kind StepKind, label string)
	EmitStepFinished(missionID string, idx int, kind StepKind, status StepStatus, retries int)
	EmitMissionCompleted(missionID, warning string)
	EmitMissionFailed(missionID string, failedStep int, reason string)
	EmitMissionCancelled(missionID, reason string)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) EmitMissionQueued(string, string, OperationType)              {}
func (NopEmitter) EmitMissionStarted(string)                                    {}
func (NopEmitter) EmitStepStarted(string, int, StepKind, string)                {}
func (NopEmitter) EmitStepFinished(string, int, StepKind, StepStatus, int)      {}
func (NopEmitter) EmitMissionCompleted(string, string)                          {}
func (NopEmitter) EmitMissionFailed(string, int, string)                        {}
func (NopEmitter) EmitMissionCancelled(string, string)                          {}
