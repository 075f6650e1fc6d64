package mission

import (
	"context"
	"log"
)

// ChargeStrategy is one way of sending the robot back to its charger.
type ChargeStrategy struct {
	Name    string
	Attempt func() error
}

// FallbackChain tries charger-return strategies strictly in order,
// stopping at the first success. A strategy failure advances the
// chain; it never aborts the mission.
type FallbackChain struct {
	strategies []ChargeStrategy
}

func NewFallbackChain(strategies ...ChargeStrategy) *FallbackChain {
	return &FallbackChain{strategies: strategies}
}

// Execute runs the chain. Returns ErrAllFallbacksExhausted only after
// every strategy has failed.
func (c *FallbackChain) Execute(ctx context.Context) error {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Attempt(); err != nil {
			log.Printf("charger: strategy %s failed: %v", s.Name, err)
			continue
		}
		log.Printf("charger: strategy %s succeeded", s.Name)
		return nil
	}
	return ErrAllFallbacksExhausted
}

// Charger is the subset of the vendor API offering charger-return
// endpoints. *amb.Client satisfies it.
type Charger interface {
	ReturnToCharger() error
	CreateChargeTask() (string, error)
	LegacyCharge() error
}

// DefaultChargeStrategies builds the standard chain: the dedicated
// service call, then the generic task API, then the legacy endpoint.
func DefaultChargeStrategies(c Charger) []ChargeStrategy {
	return []ChargeStrategy{
		{Name: "return_to_charger_service", Attempt: c.ReturnToCharger},
		{Name: "charge_task", Attempt: func() error {
			_, err := c.CreateChargeTask()
			return err
		}},
		{Name: "legacy_charge", Attempt: c.LegacyCharge},
	}
}
