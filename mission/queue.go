package mission

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Queue serializes mission execution: FIFO order, at most one mission
// running at a time, cooperative cancellation. The robot is the sole
// shared resource and the queue is its sole serialization point.
type Queue struct {
	executor *Executor
	robot    Robot
	emitter  Emitter

	mu              sync.Mutex
	pending         []*Mission
	missions        map[string]*Mission
	order           []string
	active          *Mission
	cancelActive    context.CancelFunc
	activeCancelled bool

	wake     chan struct{}
	stopChan chan struct{}
}

func NewQueue(executor *Executor, robot Robot, emitter Emitter) *Queue {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Queue{
		executor: executor,
		robot:    robot,
		emitter:  emitter,
		missions: make(map[string]*Mission),
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.run()
}

func (q *Queue) Stop() {
	select {
	case q.stopChan <- struct{}{}:
	default:
	}
}

// Enqueue appends a planned mission to the FIFO. The worker picks it
// up as soon as no mission is running.
func (q *Queue) Enqueue(m *Mission) {
	q.mu.Lock()
	m.Status = StatusQueued
	q.pending = append(q.pending, m)
	q.missions[m.ID] = m
	q.order = append(q.order, m.ID)
	q.mu.Unlock()

	q.emitter.EmitMissionQueued(m.ID, m.Name, m.Operation)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Get returns a deep copy of a mission's current state.
func (q *Queue) Get(id string) (*Mission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok := q.missions[id]
	if !ok {
		return nil, ErrMissionNotFound
	}
	return m.Clone(), nil
}

// List returns copies of all known missions, newest first.
func (q *Queue) List(limit int) []*Mission {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Mission
	for i := len(q.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m, ok := q.missions[q.order[i]]; ok {
			out = append(out, m.Clone())
		}
	}
	return out
}

// PendingCount returns the number of queued missions.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Cancel requests cancellation. A queued mission is removed from the
// FIFO immediately; a running one is cancelled cooperatively, with
// any in-flight move aborted via the vendor cancel endpoint.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	m, ok := q.missions[id]
	if !ok {
		q.mu.Unlock()
		return ErrMissionNotFound
	}

	switch m.Status {
	case StatusQueued:
		for i, p := range q.pending {
			if p.ID == id {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				break
			}
		}
		q.finalizeLocked(m, StatusCancelled)
		q.mu.Unlock()
		q.emitter.EmitMissionCancelled(id, "cancelled while queued")
		return nil
	case StatusRunning:
		q.activeCancelled = true
		cancel := q.cancelActive
		q.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return nil
	default:
		status := m.Status
		q.mu.Unlock()
		return errors.New("mission already " + string(status))
	}
}

func (q *Queue) run() {
	for {
		select {
		case <-q.stopChan:
			return
		case <-q.wake:
			for {
				m := q.popHead()
				if m == nil {
					break
				}
				q.execute(m)
			}
		}
	}
}

func (q *Queue) popHead() *Mission {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	m := q.pending[0]
	q.pending = q.pending[1:]
	return m
}

func (q *Queue) execute(m *Mission) {
	ctx, cancel := context.WithCancel(context.Background())
	q.mu.Lock()
	q.active = m
	q.cancelActive = cancel
	q.activeCancelled = false
	m.Status = StatusRunning
	q.mu.Unlock()
	defer cancel()

	q.emitter.EmitMissionStarted(m.ID)
	log.Printf("queue: mission %s (%s) started", m.ID, m.Operation)

	err := q.executor.Run(ctx, m)

	q.mu.Lock()
	cancelled := q.activeCancelled
	q.active = nil
	q.cancelActive = nil
	q.mu.Unlock()

	switch {
	case cancelled || errors.Is(err, ErrMissionCancelled):
		q.finalizeCancelled(m)
	case err != nil:
		q.mu.Lock()
		m.Error = err.Error()
		q.finalizeLocked(m, StatusFailed)
		q.mu.Unlock()
		log.Printf("queue: mission %s failed at step %d: %v", m.ID, m.FailedStep, err)
		q.emitter.EmitMissionFailed(m.ID, m.FailedStep, err.Error())
	default:
		q.mu.Lock()
		q.finalizeLocked(m, StatusCompleted)
		q.mu.Unlock()
		log.Printf("queue: mission %s completed", m.ID)
		q.emitter.EmitMissionCompleted(m.ID, m.Warning)
	}
}

// finalizeCancelled runs the load-release sequence when the robot is
// still holding a rack, then marks the mission cancelled.
func (q *Queue) finalizeCancelled(m *Mission) {
	state, err := q.robot.GetChassisState()
	if err != nil {
		log.Printf("queue: chassis state during cancel: %v", err)
	} else if state.JackUp {
		log.Printf("queue: cancelled mission %s holds a load, releasing", m.ID)
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		if err := q.executor.Release(releaseCtx, m); err != nil {
			log.Printf("queue: release after cancel: %v", err)
		}
		cancel()
	}

	q.mu.Lock()
	q.finalizeLocked(m, StatusCancelled)
	q.mu.Unlock()
	log.Printf("queue: mission %s cancelled", m.ID)
	q.emitter.EmitMissionCancelled(m.ID, "cancelled while running")
}

func (q *Queue) finalizeLocked(m *Mission, status MissionStatus) {
	m.Status = status
	now := time.Now()
	m.FinishedAt = &now
}
