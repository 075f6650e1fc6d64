package amb

// Response is the common robot API response envelope.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// MoveType selects the motion primitive used for a move command.
type MoveType string

const (
	MoveStandard      MoveType = "standard"
	MoveAlignWithRack MoveType = "align_with_rack"
	MoveToUnloadPoint MoveType = "to_unload_point"
)

// MoveState represents the lifecycle states of a move command.
type MoveState string

const (
	MoveIdle      MoveState = "idle"
	MoveMoving    MoveState = "moving"
	MoveSucceeded MoveState = "succeeded"
	MoveFailed    MoveState = "failed"
	MoveCancelled MoveState = "cancelled"
)

func (s MoveState) IsTerminal() bool {
	return s == MoveSucceeded || s == MoveFailed || s == MoveCancelled
}

// --- Move requests/responses ---

type CreateMoveRequest struct {
	Creator   string   `json:"creator"`
	Type      MoveType `json:"type"`
	TargetX   float64  `json:"target_x"`
	TargetY   float64  `json:"target_y"`
	TargetOri float64  `json:"target_ori"`
}

type MoveRef struct {
	ID int64 `json:"id"`
}

type CreateMoveResponse struct {
	Response
	Data *MoveRef `json:"data,omitempty"`
}

type MoveDetail struct {
	ID         int64     `json:"id"`
	Type       MoveType  `json:"type"`
	State      MoveState `json:"state"`
	FailReason string    `json:"fail_reason,omitempty"`
}

type MoveStatusResponse struct {
	Response
	Data *MoveDetail `json:"data,omitempty"`
}

// --- Chassis state ---

// ChassisState is the robot's self-reported actuator and motion state.
type ChassisState struct {
	MoveActive   bool    `json:"move_active"`
	WheelSpeed   float64 `json:"wheel_speed"`
	Busy         bool    `json:"busy"`
	JackUp       bool    `json:"jack_up"`
	Charging     bool    `json:"charging"`
	BatteryLevel float64 `json:"battery_level"`
}

type ChassisStateResponse struct {
	Response
	Data *ChassisState `json:"data,omitempty"`
}

// --- Charging task (generic task API) ---

type TaskRequest struct {
	Type string `json:"type"`
}

type TaskRef struct {
	ID string `json:"id"`
}

type CreateTaskResponse struct {
	Response
	Data *TaskRef `json:"data,omitempty"`
}

// --- Maps ---

type MapInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type MapsResponse struct {
	Response
	Data []MapInfo `json:"data,omitempty"`
}

// MapPoint is a named pose on a map, as reported by the robot.
type MapPoint struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Yaw  float64 `json:"yaw"`
}

type MapDetail struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Points []MapPoint `json:"points"`
}

type MapDetailResponse struct {
	Response
	Data *MapDetail `json:"data,omitempty"`
}
