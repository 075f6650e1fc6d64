package mission

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestFallbackChainOrderAndFirstSuccess(t *testing.T) {
	var invoked []string
	strategy := func(name string, err error) ChargeStrategy {
		return ChargeStrategy{Name: name, Attempt: func() error {
			invoked = append(invoked, name)
			return err
		}}
	}

	chain := NewFallbackChain(
		strategy("A", fmt.Errorf("A down")),
		strategy("B", fmt.Errorf("B down")),
		strategy("C", nil),
	)

	if err := chain.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"A", "B", "C"}
	if len(invoked) != len(want) {
		t.Fatalf("invoked = %v, want %v", invoked, want)
	}
	for i := range want {
		if invoked[i] != want[i] {
			t.Fatalf("invoked = %v, want %v", invoked, want)
		}
	}
}

func TestFallbackChainStopsAtFirstSuccess(t *testing.T) {
	var invoked []string
	chain := NewFallbackChain(
		ChargeStrategy{Name: "A", Attempt: func() error { invoked = append(invoked, "A"); return nil }},
		ChargeStrategy{Name: "B", Attempt: func() error { invoked = append(invoked, "B"); return nil }},
	)
	if err := chain.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(invoked) != 1 || invoked[0] != "A" {
		t.Errorf("invoked = %v, want [A]", invoked)
	}
}

func TestFallbackChainAllFailed(t *testing.T) {
	chain := NewFallbackChain(
		ChargeStrategy{Name: "A", Attempt: func() error { return fmt.Errorf("no") }},
		ChargeStrategy{Name: "B", Attempt: func() error { return fmt.Errorf("no") }},
	)
	err := chain.Execute(context.Background())
	if !errors.Is(err, ErrAllFallbacksExhausted) {
		t.Fatalf("err = %v, want ErrAllFallbacksExhausted", err)
	}
}

func TestFallbackChainRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := NewFallbackChain(
		ChargeStrategy{Name: "A", Attempt: func() error {
			t.Error("strategy invoked after cancellation")
			return nil
		}},
	)
	if err := chain.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDefaultChargeStrategiesOrder(t *testing.T) {
	robot := newFakeRobot()
	robot.chargeSvcErr = fmt.Errorf("service missing")
	robot.chargeTaskErr = fmt.Errorf("task API missing")

	chain := NewFallbackChain(DefaultChargeStrategies(robot)...)
	if err := chain.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"return_to_charger_service", "charge_task", "legacy_charge"}
	got := robot.chargerOrder()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}
