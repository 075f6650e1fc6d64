package mission

import (
	"errors"
	"testing"
	"time"

	"missioncore/points"
)

type staticSource struct {
	points []points.Point
}

func (s *staticSource) ListPoints() ([]points.Point, error) {
	return s.points, nil
}

func testResolver(pts []points.Point) *points.Resolver {
	return points.NewResolver(&staticSource{points: pts}, time.Minute)
}

func scenarioPoints() []points.Point {
	return []points.Point{
		{ID: "104", X: 1.0, Y: 2.0},
		{ID: "104_load", X: 1.0, Y: 2.0},
		{ID: "Drop-off_Load", X: 5.0, Y: 5.0},
		{ID: "205", X: 3.0, Y: 4.0},
		{ID: "205_load", X: 3.0, Y: 4.0},
	}
}

func TestPlanPickupShape(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	steps, err := p.Plan(OpPickup, "104", "drop-off")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := []StepKind{
		StepMove, StepAlignWithRack, StepJackUp,
		StepMove, StepToUnloadPoint, StepJackDown,
		StepMove, StepReturnToCharger,
	}
	if len(steps) != len(want) {
		t.Fatalf("len(steps) = %d, want %d", len(steps), len(want))
	}
	for i, kind := range want {
		if steps[i].Kind != kind {
			t.Errorf("steps[%d].Kind = %q, want %q", i, steps[i].Kind, kind)
		}
	}

	// Exactly one JackUp, placed before the first move toward the
	// destination; exactly one JackDown before ReturnToCharger.
	jackUpIdx, jackDownIdx, chargerIdx := -1, -1, -1
	jackUps, jackDowns := 0, 0
	for i, s := range steps {
		switch s.Kind {
		case StepJackUp:
			jackUps++
			jackUpIdx = i
		case StepJackDown:
			jackDowns++
			jackDownIdx = i
		case StepReturnToCharger:
			chargerIdx = i
		}
	}
	if jackUps != 1 || jackDowns != 1 {
		t.Fatalf("jackUps = %d, jackDowns = %d, want 1 and 1", jackUps, jackDowns)
	}
	firstDestMove := -1
	for i := jackUpIdx + 1; i < len(steps); i++ {
		if steps[i].Kind == StepMove {
			firstDestMove = i
			break
		}
	}
	if firstDestMove < 0 || firstDestMove < jackUpIdx {
		t.Errorf("no destination move after JackUp")
	}
	if jackDownIdx > chargerIdx {
		t.Errorf("JackDown at %d after ReturnToCharger at %d", jackDownIdx, chargerIdx)
	}
}

func TestPlanPickupEndToEndTargets(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	steps, err := p.Plan(OpPickup, "104", "drop-off")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	first := steps[0]
	if first.Kind != StepMove {
		t.Fatalf("first step = %q, want move", first.Kind)
	}
	if first.Target.X != 1.0 || first.Target.Y != 2.0 {
		t.Errorf("first move target = (%v,%v), want (1,2)", first.Target.X, first.Target.Y)
	}

	var unload *Step
	for _, s := range steps {
		if s.Kind == StepToUnloadPoint {
			unload = s
		}
	}
	if unload == nil {
		t.Fatal("no to_unload_point step planned")
	}
	if unload.Target.X != 5.0 || unload.Target.Y != 5.0 {
		t.Errorf("unload target = (%v,%v), want (5,5)", unload.Target.X, unload.Target.Y)
	}
}

func TestPlanUnresolvedPointAborts(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	_, err := p.Plan(OpPickup, "999", "drop-off")
	if err == nil {
		t.Fatal("expected planning error for unresolvable source")
	}
	var pe *PlanningError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *PlanningError", err)
	}
	if !errors.Is(err, points.ErrNotFound) {
		t.Errorf("err does not wrap points.ErrNotFound: %v", err)
	}
}

func TestPlanDropoffSwapsEndpoints(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	steps, err := p.Plan(OpDropoff, "104", "drop-off")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// Dropoff picks at the drop-off staging point and delivers to the rack.
	if steps[1].Kind != StepAlignWithRack {
		t.Fatalf("steps[1] = %q, want align_with_rack", steps[1].Kind)
	}
	if steps[1].Target.X != 5.0 {
		t.Errorf("align target X = %v, want 5.0 (drop-off side)", steps[1].Target.X)
	}
	var unload *Step
	for _, s := range steps {
		if s.Kind == StepToUnloadPoint {
			unload = s
		}
	}
	if unload.Target.X != 1.0 {
		t.Errorf("unload target X = %v, want 1.0 (rack side)", unload.Target.X)
	}
}

func TestPlanTransferAddsWaypointMoves(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	steps, err := p.Plan(OpTransfer, "104", "drop-off", "205")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	moves := 0
	for _, s := range steps {
		if s.Kind == StepMove {
			moves++
		}
	}
	// Pickup shape has 3 moves; the waypoint adds one more.
	if moves != 4 {
		t.Errorf("move steps = %d, want 4", moves)
	}
}

func TestPlanStepsStartPending(t *testing.T) {
	p := NewPlanner(testResolver(scenarioPoints()))
	steps, err := p.Plan(OpPickup, "104", "drop-off")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, s := range steps {
		if s.Status != StepPending {
			t.Errorf("steps[%d].Status = %q, want pending", i, s.Status)
		}
		if s.RetryCount != 0 {
			t.Errorf("steps[%d].RetryCount = %d, want 0", i, s.RetryCount)
		}
	}
}
