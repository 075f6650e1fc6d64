package mission

import (
	"fmt"

	"missioncore/points"
)

// PointResolver maps symbolic location ids to physical poses.
type PointResolver interface {
	Resolve(id string) (points.Point, error)
}

// Planner expands an operation into an ordered step list. Planning is
// pure and synchronous: it resolves points and assembles steps, it
// performs no robot I/O.
type Planner struct {
	resolver PointResolver
}

func NewPlanner(resolver PointResolver) *Planner {
	return &Planner{resolver: resolver}
}

// Plan builds the step sequence for an operation. For transfers, via
// lists intermediate stops visited while carrying the load.
func (p *Planner) Plan(op OperationType, source, dest string, via ...string) ([]*Step, error) {
	switch op {
	case OpPickup:
		return p.planCarry(source, dest, nil)
	case OpDropoff:
		return p.planCarry(dest, source, nil)
	case OpTransfer:
		return p.planCarry(source, dest, via)
	default:
		return nil, fmt.Errorf("unknown operation type %q", op)
	}
}

// planCarry emits the canonical carry sequence: approach and align at
// the pick location, raise the jack, travel (optionally through
// waypoints), unload at the drop location, lower the jack, retreat,
// and return to the charger.
func (p *Planner) planCarry(pick, drop string, via []string) ([]*Step, error) {
	var steps []*Step

	move, err := p.dockingStep(StepMove, pick)
	if err != nil {
		return nil, err
	}
	steps = append(steps, move)

	align, err := p.loadStep(StepAlignWithRack, pick)
	if err != nil {
		return nil, err
	}
	steps = append(steps, align)

	steps = append(steps, &Step{Kind: StepJackUp, Status: StepPending})

	for _, wp := range via {
		hop, err := p.dockingStep(StepMove, wp)
		if err != nil {
			return nil, err
		}
		steps = append(steps, hop)
	}

	approach, err := p.dockingStep(StepMove, drop)
	if err != nil {
		return nil, err
	}
	steps = append(steps, approach)

	unload, err := p.loadStep(StepToUnloadPoint, drop)
	if err != nil {
		return nil, err
	}
	steps = append(steps, unload)

	steps = append(steps, &Step{Kind: StepJackDown, Status: StepPending})

	// Retreat to the docking pose so the rack is clear before leaving.
	retreat, err := p.dockingStep(StepMove, drop)
	if err != nil {
		return nil, err
	}
	steps = append(steps, retreat)

	steps = append(steps, &Step{Kind: StepReturnToCharger, Status: StepPending})
	return steps, nil
}

func (p *Planner) dockingStep(kind StepKind, id string) (*Step, error) {
	label := points.DockingID(id)
	pt, err := p.resolver.Resolve(label)
	if err != nil {
		return nil, &PlanningError{PointID: label, Err: err}
	}
	return &Step{Kind: kind, Label: label, Target: pt, Status: StepPending}, nil
}

func (p *Planner) loadStep(kind StepKind, id string) (*Step, error) {
	label := points.LoadID(id)
	pt, err := p.resolver.Resolve(label)
	if err != nil {
		return nil, &PlanningError{PointID: label, Err: err}
	}
	return &Step{Kind: kind, Label: label, Target: pt, Status: StepPending}, nil
}
