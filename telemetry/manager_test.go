package telemetry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"missioncore/amb"
)

type fakeChassis struct {
	mu    sync.Mutex
	state amb.ChassisState
	err   error
}

func (f *fakeChassis) GetChassisState() (*amb.ChassisState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	state := f.state
	return &state, nil
}

func (f *fakeChassis) set(state amb.ChassisState, err error) {
	f.mu.Lock()
	f.state = state
	f.err = err
	f.mu.Unlock()
}

type connRecorder struct {
	mu     sync.Mutex
	events []string
}

func (c *connRecorder) EmitRobotConnected(robotID string) {
	c.mu.Lock()
	c.events = append(c.events, "connected")
	c.mu.Unlock()
}

func (c *connRecorder) EmitRobotDisconnected(robotID, reason string) {
	c.mu.Lock()
	c.events = append(c.events, "disconnected")
	c.mu.Unlock()
}

func (c *connRecorder) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestManagerTracksChassisState(t *testing.T) {
	chassis := &fakeChassis{}
	chassis.set(amb.ChassisState{BatteryLevel: 0.82, JackUp: true}, nil)

	m := NewManager(chassis, nil, nil, "AMR-01", 2*time.Millisecond)
	m.Start()
	defer m.Stop()

	waitUntil(t, "first snapshot", func() bool { return m.Online() })

	snap := m.Snapshot()
	if snap.RobotID != "AMR-01" {
		t.Errorf("RobotID = %q, want AMR-01", snap.RobotID)
	}
	if snap.BatteryLevel != 0.82 {
		t.Errorf("BatteryLevel = %f, want 0.82", snap.BatteryLevel)
	}
	if !snap.JackUp {
		t.Error("JackUp should be true")
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestManagerConnectivityTransitions(t *testing.T) {
	chassis := &fakeChassis{}
	rec := &connRecorder{}

	m := NewManager(chassis, nil, rec, "AMR-01", 2*time.Millisecond)
	m.Start()
	defer m.Stop()

	waitUntil(t, "connected event", func() bool { return len(rec.all()) >= 1 })

	chassis.set(amb.ChassisState{}, errors.New("connection refused"))
	waitUntil(t, "disconnected event", func() bool { return len(rec.all()) >= 2 })

	chassis.set(amb.ChassisState{}, nil)
	waitUntil(t, "reconnected event", func() bool { return len(rec.all()) >= 3 })

	events := rec.all()
	want := []string{"connected", "disconnected", "connected"}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
	if m.Online() != true {
		t.Error("manager should be online after reconnect")
	}
}

func TestManagerOfflineKeepsLastSnapshot(t *testing.T) {
	chassis := &fakeChassis{}
	chassis.set(amb.ChassisState{BatteryLevel: 0.5}, nil)

	m := NewManager(chassis, nil, nil, "AMR-01", 2*time.Millisecond)
	m.Start()
	defer m.Stop()

	waitUntil(t, "online", func() bool { return m.Online() })
	chassis.set(amb.ChassisState{}, errors.New("timeout"))
	waitUntil(t, "offline", func() bool { return !m.Online() })

	snap := m.Snapshot()
	if snap.Online {
		t.Error("snapshot should be marked offline")
	}
	if snap.BatteryLevel != 0.5 {
		t.Errorf("BatteryLevel = %f, want last known 0.5", snap.BatteryLevel)
	}
}
