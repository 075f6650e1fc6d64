package mission

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"missioncore/amb"
)

func fastGateConfig() GateConfig {
	return GateConfig{
		WheelSpeedEpsilon: 0.01,
		SpeedRechecks:     3,
		RecheckPause:      time.Millisecond,
		SettleDelay:       time.Millisecond,
	}
}

func TestGatePassesWhenIdle(t *testing.T) {
	robot := newFakeRobot()
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if !res.Passed {
		t.Fatalf("violations = %v, want pass", res.Violations)
	}
}

func TestGateRejectsActiveMove(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{MoveActive: true}}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if res.Passed {
		t.Fatal("expected violation for active move")
	}
	if !hasViolation(res, "move command active") {
		t.Errorf("violations = %v", res.Violations)
	}
}

func TestGateRejectsBusy(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{Busy: true}}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if res.Passed {
		t.Fatal("expected violation for busy chassis")
	}
}

func TestGateWheelSpeedSettlesOnRecheck(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{
		{WheelSpeed: 0.4},
		{WheelSpeed: 0.2},
		{WheelSpeed: 0.0},
	}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if !res.Passed {
		t.Fatalf("violations = %v, want pass after speed settles", res.Violations)
	}
}

func TestGateWheelSpeedStuck(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{WheelSpeed: 0.5}}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if res.Passed {
		t.Fatal("expected violation for stuck wheel speed")
	}
	if !hasViolation(res, "wheel speed") {
		t.Errorf("violations = %v", res.Violations)
	}
}

func TestGateUnavailableEndpointDoesNotBlock(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisErr = errors.New("connection refused")
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if !res.Passed {
		t.Fatalf("violations = %v, gate must be best-effort on unavailability", res.Violations)
	}
}

func TestGateDockLowersRaisedJack(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{JackUp: true}}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), DockOperation)
	if !res.Passed {
		t.Fatalf("violations = %v, want pass after corrective jack down", res.Violations)
	}
	if robot.jackDownCalls != 1 {
		t.Errorf("jackDownCalls = %d, want 1", robot.jackDownCalls)
	}
}

func TestGateDockCorrectiveFailureIsViolation(t *testing.T) {
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{JackUp: true}}
	robot.jackErrs = []error{errors.New("jack stuck")}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), DockOperation)
	if res.Passed {
		t.Fatal("expected violation when corrective jack down fails")
	}
}

func TestGateLiftIgnoresRaisedJack(t *testing.T) {
	// A raised jack only gates dock operations; a lift command may be
	// issued to lower it.
	robot := newFakeRobot()
	robot.chassisSeq = []amb.ChassisState{{JackUp: true}}
	gate := NewGate(robot, fastGateConfig())
	res := gate.Check(context.Background(), LiftOperation)
	if !res.Passed {
		t.Fatalf("violations = %v, want pass", res.Violations)
	}
	if robot.jackDownCalls != 0 {
		t.Errorf("jackDownCalls = %d, want 0", robot.jackDownCalls)
	}
}

func hasViolation(res CheckResult, substr string) bool {
	for _, v := range res.Violations {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}
