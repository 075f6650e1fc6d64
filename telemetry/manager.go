package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"missioncore/amb"
)

// ChassisSource reads the live chassis state from the robot.
type ChassisSource interface {
	GetChassisState() (*amb.ChassisState, error)
}

// Emitter receives robot connectivity transitions.
type Emitter interface {
	EmitRobotConnected(robotID string)
	EmitRobotDisconnected(robotID, reason string)
}

// Manager polls the robot's chassis endpoint, keeps the last snapshot
// in memory, and mirrors it into Redis when a store is configured.
// Connectivity transitions are forwarded to the emitter.
type Manager struct {
	source   ChassisSource
	redis    *RedisStore
	emitter  Emitter
	robotID  string
	interval time.Duration

	mu       sync.Mutex
	snapshot Snapshot
	online   bool
	everSeen bool

	stopChan chan struct{}
}

func NewManager(source ChassisSource, redis *RedisStore, emitter Emitter, robotID string, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Manager{
		source:   source,
		redis:    redis,
		emitter:  emitter,
		robotID:  robotID,
		interval: interval,
		snapshot: Snapshot{RobotID: robotID},
		stopChan: make(chan struct{}),
	}
}

func (m *Manager) Start() {
	go m.run()
}

func (m *Manager) Stop() {
	select {
	case m.stopChan <- struct{}{}:
	default:
	}
	if m.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.redis.RemoveRobot(ctx, m.robotID); err != nil {
			log.Printf("telemetry: remove mirror entry: %v", err)
		}
	}
}

// Snapshot returns a copy of the last known robot state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Online reports whether the last poll reached the robot.
func (m *Manager) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Manager) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Manager) poll() {
	state, err := m.source.GetChassisState()
	if err != nil {
		m.markOffline(err)
		return
	}

	m.mu.Lock()
	wasOffline := !m.online || !m.everSeen
	m.online = true
	m.everSeen = true
	m.snapshot = Snapshot{
		RobotID:      m.robotID,
		Online:       true,
		MoveActive:   state.MoveActive,
		WheelSpeed:   state.WheelSpeed,
		Busy:         state.Busy,
		JackUp:       state.JackUp,
		Charging:     state.Charging,
		BatteryLevel: state.BatteryLevel,
		UpdatedAt:    time.Now(),
	}
	snap := m.snapshot
	m.mu.Unlock()

	if wasOffline {
		log.Printf("telemetry: robot %s connected", m.robotID)
		if m.emitter != nil {
			m.emitter.EmitRobotConnected(m.robotID)
		}
	}
	m.mirror(&snap)
}

func (m *Manager) markOffline(cause error) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = false
	m.everSeen = true
	m.snapshot.Online = false
	m.snapshot.UpdatedAt = time.Now()
	snap := m.snapshot
	m.mu.Unlock()

	if wasOnline {
		log.Printf("telemetry: robot %s disconnected: %v", m.robotID, cause)
		if m.emitter != nil {
			m.emitter.EmitRobotDisconnected(m.robotID, cause.Error())
		}
	}
	m.mirror(&snap)
}

// mirror is best-effort: Redis being down never blocks polling.
func (m *Manager) mirror(snap *Snapshot) {
	if m.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.redis.SetSnapshot(ctx, snap); err != nil {
		log.Printf("telemetry: mirror snapshot: %v", err)
	}
}
