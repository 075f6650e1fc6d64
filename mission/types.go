package mission

import (
	"time"

	"github.com/google/uuid"

	"missioncore/amb"
	"missioncore/points"
)

// OperationType is the high-level intent behind a mission.
type OperationType string

const (
	OpPickup   OperationType = "pickup"
	OpDropoff  OperationType = "dropoff"
	OpTransfer OperationType = "transfer"
)

// StepKind is the closed set of atomic robot operations.
type StepKind string

const (
	StepMove            StepKind = "move"
	StepAlignWithRack   StepKind = "align_with_rack"
	StepJackUp          StepKind = "jack_up"
	StepJackDown        StepKind = "jack_down"
	StepToUnloadPoint   StepKind = "to_unload_point"
	StepReturnToCharger StepKind = "return_to_charger"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// Step is one atomic robot command plus its completion lifecycle.
// Kind, Label and Target are fixed at planning time; Status and
// RetryCount are mutated only by the executor.
type Step struct {
	Kind       StepKind
	Label      string // symbolic id the target was resolved from
	Target     points.Point
	Status     StepStatus
	RetryCount int
}

type MissionStatus string

const (
	StatusQueued    MissionStatus = "queued"
	StatusRunning   MissionStatus = "running"
	StatusCompleted MissionStatus = "completed"
	StatusFailed    MissionStatus = "failed"
	StatusCancelled MissionStatus = "cancelled"
)

func (s MissionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Mission is one complete robot task. The step list is fixed after
// planning; status fields are owned by the queue and executor.
type Mission struct {
	ID         string
	Name       string
	Operation  OperationType
	RobotID    string
	Source     string
	Dest       string
	Steps      []*Step
	Status     MissionStatus
	FailedStep int    // index of the failing step, -1 when none
	Warning    string // non-fatal charger-return failure
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

func NewMission(name string, op OperationType, robotID, source, dest string, steps []*Step) *Mission {
	return &Mission{
		ID:         uuid.New().String(),
		Name:       name,
		Operation:  op,
		RobotID:    robotID,
		Source:     source,
		Dest:       dest,
		Steps:      steps,
		Status:     StatusQueued,
		FailedStep: -1,
		CreatedAt:  time.Now(),
	}
}

// Clone returns a deep copy safe to hand out while the queue keeps
// mutating the original.
func (m *Mission) Clone() *Mission {
	c := *m
	c.Steps = make([]*Step, len(m.Steps))
	for i, s := range m.Steps {
		sc := *s
		c.Steps[i] = &sc
	}
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Robot is the subset of the vendor API the engine drives.
// *amb.Client satisfies it.
type Robot interface {
	CreateMove(req *amb.CreateMoveRequest) (int64, error)
	GetMoveStatus(id int64) (*amb.MoveDetail, error)
	CancelMove(id int64) error
	JackUp() error
	JackDown() error
	GetChassisState() (*amb.ChassisState, error)
}
