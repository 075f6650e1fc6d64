package mission

import (
	"context"
	"fmt"
	"log"
	"time"
)

// GateOp selects which precondition set the gate enforces.
type GateOp int

const (
	LiftOperation GateOp = iota
	DockOperation
)

// CheckResult is produced and consumed within a single gate invocation.
type CheckResult struct {
	Passed     bool
	Violations []string
}

type GateConfig struct {
	WheelSpeedEpsilon float64
	SpeedRechecks     int
	RecheckPause      time.Duration
	SettleDelay       time.Duration
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		WheelSpeedEpsilon: 0.01,
		SpeedRechecks:     3,
		RecheckPause:      500 * time.Millisecond,
		SettleDelay:       3 * time.Second,
	}
}

// Gate checks robot-reported preconditions before load-bearing
// operations. It is best-effort: an unreachable chassis endpoint is
// logged and does not block, since the reported state is advisory,
// not a physical interlock.
type Gate struct {
	robot Robot
	cfg   GateConfig
}

func NewGate(robot Robot, cfg GateConfig) *Gate {
	return &Gate{robot: robot, cfg: cfg}
}

// Check queries movement activity, wheel speed (rechecked up to the
// configured count) and the busy flag. Dock operations additionally
// require the jack to be down; a raised jack triggers a corrective
// JackDown before proceeding. Passing checks are followed by a fixed
// settle delay.
func (g *Gate) Check(ctx context.Context, op GateOp) CheckResult {
	state, err := g.robot.GetChassisState()
	if err != nil {
		log.Printf("safety: chassis state unavailable, proceeding best-effort: %v", err)
		return CheckResult{Passed: true}
	}

	var violations []string
	if state.MoveActive {
		violations = append(violations, "move command active")
	}

	speed := state.WheelSpeed
	for i := 0; i < g.cfg.SpeedRechecks && speed >= g.cfg.WheelSpeedEpsilon; i++ {
		if err := sleepCtx(ctx, g.cfg.RecheckPause); err != nil {
			return CheckResult{Passed: false, Violations: append(violations, "cancelled during speed recheck")}
		}
		next, err := g.robot.GetChassisState()
		if err != nil {
			log.Printf("safety: speed recheck unavailable, proceeding best-effort: %v", err)
			speed = 0
			break
		}
		speed = next.WheelSpeed
		state = next
	}
	if speed >= g.cfg.WheelSpeedEpsilon {
		violations = append(violations, fmt.Sprintf("wheel speed %.3f above threshold", speed))
	}

	if state.Busy {
		violations = append(violations, "chassis busy")
	}

	if op == DockOperation && state.JackUp {
		// Corrective action: lower the jack before any dock/charge move.
		log.Printf("safety: jack reported up before dock operation, lowering")
		if err := g.robot.JackDown(); err != nil {
			violations = append(violations, fmt.Sprintf("corrective jack down failed: %v", err))
		} else if err := sleepCtx(ctx, g.cfg.SettleDelay); err != nil {
			violations = append(violations, "cancelled during corrective settle")
		}
	}

	if len(violations) > 0 {
		return CheckResult{Passed: false, Violations: violations}
	}

	if err := sleepCtx(ctx, g.cfg.SettleDelay); err != nil {
		return CheckResult{Passed: false, Violations: []string{"cancelled during settle"}}
	}
	return CheckResult{Passed: true}
}

// sleepCtx waits for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
