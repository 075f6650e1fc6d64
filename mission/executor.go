package mission

import (
	"context"
	"fmt"
	"log"
	"time"

	"missioncore/amb"
)

// StepPolicy bounds one step kind's execution.
type StepPolicy struct {
	MaxRetries   int
	Timeout      time.Duration
	PollInterval time.Duration
	SettleDelay  time.Duration
	Backoff      time.Duration
}

// Policies holds per-kind step policies plus the cross-cutting budgets.
type Policies struct {
	Move    StepPolicy
	Align   StepPolicy
	Jack    StepPolicy
	Unload  StepPolicy
	Charger StepPolicy

	AlignAttempts    int
	SafetyRechecks   int
	SafetyRetryPause time.Duration
}

func DefaultPolicies() Policies {
	move := StepPolicy{
		MaxRetries:   2,
		Timeout:      150 * time.Second,
		PollInterval: time.Second,
		Backoff:      2 * time.Second,
	}
	return Policies{
		Move: move,
		Align: StepPolicy{
			Timeout:      120 * time.Second,
			PollInterval: time.Second,
			Backoff:      2 * time.Second,
		},
		Jack: StepPolicy{
			MaxRetries:  2,
			SettleDelay: 12 * time.Second,
			Backoff:     2 * time.Second,
		},
		Unload: move,
		Charger: StepPolicy{
			Timeout:      300 * time.Second,
			PollInterval: 2 * time.Second,
		},
		AlignAttempts:    3,
		SafetyRechecks:   3,
		SafetyRetryPause: 2 * time.Second,
	}
}

// For returns the policy governing a step kind.
func (p Policies) For(kind StepKind) StepPolicy {
	switch kind {
	case StepAlignWithRack:
		return p.Align
	case StepJackUp, StepJackDown:
		return p.Jack
	case StepToUnloadPoint:
		return p.Unload
	case StepReturnToCharger:
		return p.Charger
	default:
		return p.Move
	}
}

func moveTypeFor(kind StepKind) amb.MoveType {
	switch kind {
	case StepAlignWithRack:
		return amb.MoveAlignWithRack
	case StepToUnloadPoint:
		return amb.MoveToUnloadPoint
	default:
		return amb.MoveStandard
	}
}

// Executor drives one step at a time against the robot: issue the
// command, poll for a terminal state, apply the step's retry policy,
// and gate load-bearing operations on the SafetyGate.
type Executor struct {
	robot    Robot
	gate     *Gate
	charger  *FallbackChain
	policies Policies
	emitter  Emitter
	creator  string
}

func NewExecutor(robot Robot, gate *Gate, charger *FallbackChain, policies Policies, emitter Emitter) *Executor {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Executor{
		robot:    robot,
		gate:     gate,
		charger:  charger,
		policies: policies,
		emitter:  emitter,
		creator:  "missioncore",
	}
}

// Run executes a mission's steps strictly in order. On failure the
// failing step index is recorded on the mission and an error from the
// step taxonomy is returned. Charger-return exhaustion is recorded as
// a non-fatal warning, not an error.
func (e *Executor) Run(ctx context.Context, m *Mission) error {
	for i, step := range m.Steps {
		// Cancellation is observed between steps.
		if ctx.Err() != nil {
			return ErrMissionCancelled
		}

		step.Status = StepRunning
		e.emitter.EmitStepStarted(m.ID, i, step.Kind, step.Label)

		err := e.runStep(ctx, m, step)
		if err != nil {
			step.Status = StepFailed
			e.emitter.EmitStepFinished(m.ID, i, step.Kind, step.Status, step.RetryCount)
			if ctx.Err() != nil {
				return ErrMissionCancelled
			}
			m.FailedStep = i
			return err
		}

		step.Status = StepSucceeded
		e.emitter.EmitStepFinished(m.ID, i, step.Kind, step.Status, step.RetryCount)
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, m *Mission, step *Step) error {
	switch step.Kind {
	case StepAlignWithRack:
		return e.runAlign(ctx, m, step)
	case StepJackUp, StepJackDown:
		return e.runJack(ctx, step)
	case StepReturnToCharger:
		return e.runCharger(ctx, m)
	default:
		return e.runMove(ctx, step)
	}
}

// runMove issues a move command and polls to a terminal state,
// re-issuing the step on send or terminal failure until the retry
// budget is exhausted.
func (e *Executor) runMove(ctx context.Context, step *Step) error {
	pol := e.policies.For(step.Kind)
	var lastErr error
	for attempt := 0; attempt <= pol.MaxRetries; attempt++ {
		step.RetryCount = attempt
		if attempt > 0 {
			if err := sleepCtx(ctx, pol.Backoff); err != nil {
				return err
			}
		}
		lastErr = e.attemptMove(ctx, step, pol)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		log.Printf("executor: %s attempt %d/%d failed: %v", step.Kind, attempt+1, pol.MaxRetries+1, lastErr)
	}
	return lastErr
}

// attemptMove is one send-then-poll cycle.
func (e *Executor) attemptMove(ctx context.Context, step *Step, pol StepPolicy) error {
	id, err := e.robot.CreateMove(&amb.CreateMoveRequest{
		Creator:   e.creator,
		Type:      moveTypeFor(step.Kind),
		TargetX:   step.Target.X,
		TargetY:   step.Target.Y,
		TargetOri: step.Target.Ori,
	})
	if err != nil {
		return &TransientCommandError{Op: fmt.Sprintf("create %s move", step.Kind), Err: err}
	}
	return e.pollMove(ctx, step.Kind, id, pol)
}

// pollMove watches a move until it reaches a terminal state or the
// step timeout elapses. Cancellation actively aborts the in-flight
// move via the vendor cancel endpoint.
func (e *Executor) pollMove(ctx context.Context, kind StepKind, moveID int64, pol StepPolicy) error {
	deadline := time.Now().Add(pol.Timeout)
	ticker := time.NewTicker(pol.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := e.robot.CancelMove(moveID); err != nil {
				log.Printf("executor: cancel in-flight move %d: %v", moveID, err)
			}
			return ctx.Err()
		case <-ticker.C:
			detail, err := e.robot.GetMoveStatus(moveID)
			if err != nil {
				// Transient poll errors are tolerated until the deadline.
				log.Printf("executor: poll move %d: %v", moveID, err)
			} else if detail.State.IsTerminal() {
				if detail.State == amb.MoveSucceeded {
					return nil
				}
				reason := string(detail.State)
				if detail.FailReason != "" {
					reason += ": " + detail.FailReason
				}
				return &TerminalStepFailure{Kind: kind, Reason: reason}
			}
			if time.Now().After(deadline) {
				if err := e.robot.CancelMove(moveID); err != nil {
					log.Printf("executor: cancel timed-out move %d: %v", moveID, err)
				}
				return &TerminalStepFailure{Kind: kind, Reason: "timeout waiting for terminal state"}
			}
		}
	}
}

// runAlign re-issues the whole alignment step with a corrective
// repositioning nudge between attempts. Exhausting the attempt budget
// fails the mission after a best-effort emergency charger return.
func (e *Executor) runAlign(ctx context.Context, m *Mission, step *Step) error {
	attempts := e.policies.AlignAttempts
	if attempts < 1 {
		attempts = 1
	}
	pol := e.policies.For(StepAlignWithRack)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		step.RetryCount = attempt
		if attempt > 0 {
			e.nudge(ctx, step)
		}
		lastErr = e.attemptMove(ctx, step, pol)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		log.Printf("executor: rack alignment attempt %d/%d failed: %v", attempt+1, attempts, lastErr)
	}

	log.Printf("executor: rack alignment exhausted, attempting emergency charger return")
	if err := e.charger.Execute(ctx); err != nil {
		log.Printf("executor: emergency charger return failed: %v", err)
		m.Warning = "emergency charger return failed after alignment exhaustion"
	}
	return &TerminalStepFailure{Kind: StepAlignWithRack, Reason: fmt.Sprintf("alignment attempts exhausted: %v", lastErr)}
}

// nudge issues a short standard move back to the step's approach pose
// so the next alignment attempt starts from a known position.
func (e *Executor) nudge(ctx context.Context, step *Step) {
	id, err := e.robot.CreateMove(&amb.CreateMoveRequest{
		Creator:   e.creator,
		Type:      amb.MoveStandard,
		TargetX:   step.Target.X,
		TargetY:   step.Target.Y,
		TargetOri: step.Target.Ori,
	})
	if err != nil {
		log.Printf("executor: corrective nudge: %v", err)
		return
	}
	pol := e.policies.For(StepMove)
	if err := e.pollMove(ctx, StepMove, id, pol); err != nil {
		log.Printf("executor: corrective nudge did not complete: %v", err)
	}
}

// runJack gates the lift operation, issues the command with bounded
// send retries, then enforces the mandatory settle delay. Actuator
// settling is not observable via status polling, so the settle delay
// is the completion condition.
func (e *Executor) runJack(ctx context.Context, step *Step) error {
	res := e.gateWithRetries(ctx, LiftOperation)
	if !res.Passed {
		return &SafetyViolation{Violations: res.Violations}
	}

	pol := e.policies.For(step.Kind)
	var lastErr error
	for attempt := 0; attempt <= pol.MaxRetries; attempt++ {
		step.RetryCount = attempt
		if attempt > 0 {
			if err := sleepCtx(ctx, pol.Backoff); err != nil {
				return err
			}
		}
		var err error
		if step.Kind == StepJackUp {
			err = e.robot.JackUp()
		} else {
			err = e.robot.JackDown()
		}
		if err != nil {
			lastErr = &TransientCommandError{Op: string(step.Kind), Err: err}
			log.Printf("executor: %s attempt %d failed: %v", step.Kind, attempt+1, err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return lastErr
	}

	return sleepCtx(ctx, pol.SettleDelay)
}

// runCharger gates the dock operation and walks the fallback chain.
// Exhaustion is attached to the mission as a warning, never an error.
func (e *Executor) runCharger(ctx context.Context, m *Mission) error {
	res := e.gateWithRetries(ctx, DockOperation)
	if !res.Passed {
		// Charger return is best-effort end to end; a stuck gate is
		// logged and the chain is tried anyway.
		log.Printf("executor: charger-return gate violations, proceeding: %v", res.Violations)
	}

	err := e.charger.Execute(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	log.Printf("executor: %v", err)
	m.Warning = ErrAllFallbacksExhausted.Error()
	return nil
}

// gateWithRetries delays on safety violations for a bounded number of
// rechecks rather than failing immediately.
func (e *Executor) gateWithRetries(ctx context.Context, op GateOp) CheckResult {
	var res CheckResult
	for i := 0; i <= e.policies.SafetyRechecks; i++ {
		res = e.gate.Check(ctx, op)
		if res.Passed || ctx.Err() != nil {
			return res
		}
		log.Printf("executor: safety violations, waiting: %v", res.Violations)
		if err := sleepCtx(ctx, e.policies.SafetyRetryPause); err != nil {
			return res
		}
	}
	return res
}

// Release drives a cancelled load-bearing mission back to its planned
// drop location and lowers the jack, so the robot is never left
// holding a rack.
func (e *Executor) Release(ctx context.Context, m *Mission) error {
	var unloadIdx = -1
	for i, s := range m.Steps {
		if s.Kind == StepToUnloadPoint {
			unloadIdx = i
		}
	}
	if unloadIdx < 0 {
		return e.runJack(ctx, &Step{Kind: StepJackDown, Status: StepRunning})
	}

	unload := m.Steps[unloadIdx]
	approach := &Step{Kind: StepMove, Label: unload.Label, Target: unload.Target, Status: StepRunning}
	for i := unloadIdx - 1; i >= 0; i-- {
		if m.Steps[i].Kind == StepMove {
			approach.Label = m.Steps[i].Label
			approach.Target = m.Steps[i].Target
			break
		}
	}

	if err := e.runMove(ctx, approach); err != nil {
		return fmt.Errorf("release: approach: %w", err)
	}
	release := &Step{Kind: StepToUnloadPoint, Label: unload.Label, Target: unload.Target, Status: StepRunning}
	if err := e.runMove(ctx, release); err != nil {
		return fmt.Errorf("release: unload: %w", err)
	}
	if err := e.runJack(ctx, &Step{Kind: StepJackDown, Status: StepRunning}); err != nil {
		return fmt.Errorf("release: jack down: %w", err)
	}
	return nil
}
