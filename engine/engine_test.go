package engine

import (
	"testing"
	"time"

	"missioncore/config"
	"missioncore/mission"
	"missioncore/points"
)

func TestMissionRecordRoundTrip(t *testing.T) {
	steps := []*mission.Step{
		{Kind: mission.StepMove, Label: "104_load_docking", Target: points.Point{ID: "104_load_docking", X: 1, Y: 2, Ori: 90}},
		{Kind: mission.StepJackUp},
	}
	m := mission.NewMission("pickup 104", mission.OpPickup, "AMR-01", "104", "Drop-off", steps)
	m.Status = mission.StatusRunning

	got := missionFromRecord(missionRecord(m))

	if got.ID != m.ID || got.Name != m.Name || got.Operation != m.Operation {
		t.Errorf("identity fields changed: %+v", got)
	}
	if got.Status != mission.StatusRunning {
		t.Errorf("Status = %q, want running", got.Status)
	}
	if got.FailedStep != -1 {
		t.Errorf("FailedStep = %d, want -1", got.FailedStep)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(got.Steps))
	}
	if got.Steps[0].Kind != mission.StepMove || got.Steps[0].Target.X != 1 || got.Steps[0].Target.Ori != 90 {
		t.Errorf("step 0 = %+v", got.Steps[0])
	}
	if got.Steps[1].Kind != mission.StepJackUp {
		t.Errorf("step 1 kind = %q", got.Steps[1].Kind)
	}
}

func TestPoliciesFromConfig(t *testing.T) {
	e := &Engine{}
	mc := config.MissionConfig{
		MoveTimeout:    30 * time.Second,
		PollInterval:   250 * time.Millisecond,
		JackSettle:     5 * time.Second,
		MoveRetries:    4,
		AlignAttempts:  2,
		SafetyRechecks: 1,
	}

	p := e.policies(mc)
	if p.Move.Timeout != 30*time.Second || p.Align.Timeout != 30*time.Second {
		t.Errorf("move/align timeout = %v/%v", p.Move.Timeout, p.Align.Timeout)
	}
	if p.Move.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %v", p.Move.PollInterval)
	}
	if p.Jack.SettleDelay != 5*time.Second {
		t.Errorf("jack settle = %v", p.Jack.SettleDelay)
	}
	if p.Move.MaxRetries != 4 || p.Unload.MaxRetries != 4 {
		t.Errorf("move retries = %d/%d", p.Move.MaxRetries, p.Unload.MaxRetries)
	}
	if p.AlignAttempts != 2 || p.SafetyRechecks != 1 {
		t.Errorf("attempts/rechecks = %d/%d", p.AlignAttempts, p.SafetyRechecks)
	}
}

func TestPoliciesZeroConfigKeepsDefaults(t *testing.T) {
	e := &Engine{}
	p := e.policies(config.MissionConfig{})
	def := mission.DefaultPolicies()
	if p.Move.Timeout != def.Move.Timeout || p.Jack.SettleDelay != def.Jack.SettleDelay {
		t.Errorf("zero config changed defaults: %+v", p)
	}
}
