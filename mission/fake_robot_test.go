package mission

import (
	"sync"

	"missioncore/amb"
)

// fakeRobot scripts the vendor API for executor and queue tests.
// Move status sequences are keyed by move id (assigned 1, 2, ... in
// creation order); the last state in a sequence repeats.
type fakeRobot struct {
	mu         sync.Mutex
	nextID     int64
	creates    []amb.CreateMoveRequest
	createErrs []error

	statusSeq  map[int64][]amb.MoveState
	defaultSeq []amb.MoveState
	statusIdx  map[int64]int

	cancelled []int64

	jackUpCalls   int
	jackDownCalls int
	jackErrs      []error

	chassisSeq []amb.ChassisState
	chassisIdx int
	chassisErr error

	chargeSvcErr  error
	chargeTaskErr error
	legacyErr     error
	chargerCalls  []string
}

func newFakeRobot() *fakeRobot {
	return &fakeRobot{
		statusSeq:  make(map[int64][]amb.MoveState),
		statusIdx:  make(map[int64]int),
		defaultSeq: []amb.MoveState{amb.MoveSucceeded},
	}
}

func (r *fakeRobot) CreateMove(req *amb.CreateMoveRequest) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	r.nextID++
	r.creates = append(r.creates, *req)
	return r.nextID, nil
}

func (r *fakeRobot) GetMoveStatus(id int64) (*amb.MoveDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq, ok := r.statusSeq[id]
	if !ok {
		seq = r.defaultSeq
	}
	idx := r.statusIdx[id]
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	r.statusIdx[id]++
	return &amb.MoveDetail{ID: id, State: seq[idx]}, nil
}

func (r *fakeRobot) CancelMove(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *fakeRobot) JackUp() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jackUpCalls++
	return r.popJackErr()
}

func (r *fakeRobot) JackDown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jackDownCalls++
	return r.popJackErr()
}

func (r *fakeRobot) popJackErr() error {
	if len(r.jackErrs) > 0 {
		err := r.jackErrs[0]
		r.jackErrs = r.jackErrs[1:]
		return err
	}
	return nil
}

func (r *fakeRobot) GetChassisState() (*amb.ChassisState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chassisErr != nil {
		return nil, r.chassisErr
	}
	if len(r.chassisSeq) == 0 {
		return &amb.ChassisState{}, nil
	}
	idx := r.chassisIdx
	if idx >= len(r.chassisSeq) {
		idx = len(r.chassisSeq) - 1
	}
	r.chassisIdx++
	state := r.chassisSeq[idx]
	return &state, nil
}

func (r *fakeRobot) ReturnToCharger() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chargerCalls = append(r.chargerCalls, "return_to_charger_service")
	return r.chargeSvcErr
}

func (r *fakeRobot) CreateChargeTask() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chargerCalls = append(r.chargerCalls, "charge_task")
	if r.chargeTaskErr != nil {
		return "", r.chargeTaskErr
	}
	return "task-1", nil
}

func (r *fakeRobot) LegacyCharge() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chargerCalls = append(r.chargerCalls, "legacy_charge")
	return r.legacyErr
}

func (r *fakeRobot) moveRequests() []amb.CreateMoveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]amb.CreateMoveRequest, len(r.creates))
	copy(out, r.creates)
	return out
}

func (r *fakeRobot) cancelledMoves() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.cancelled))
	copy(out, r.cancelled)
	return out
}

func (r *fakeRobot) chargerOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.chargerCalls))
	copy(out, r.chargerCalls)
	return out
}
