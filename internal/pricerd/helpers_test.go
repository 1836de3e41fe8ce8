package pricerd

import (
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

func validRequest() models.PricingRequest {
	return models.PricingRequest{
		Strike:       100,
		Spot:         100,
		RiskFreeRate: 0.05,
		Volatility:   0.2,
		TimeToExpiry: 1,
		OptionKind:   models.OptionKindCall,
		NumTimeSteps: 4,
		NumScenarios: 500,
		InitialSeed:  7,
		Quantity:     1,
	}
}

func newTestExecutor() (*RunStore, *RunExecutor) {
	store := NewRunStore()
	executor := NewRunExecutor(store, nil)
	executor.SetLogger(logger.Discard())
	return store, executor
}

func waitForTerminal(t *testing.T, store *RunStore, runID string) models.Run {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s disappeared", runID)
		}
		if run.Status.Terminal() {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not finish in time", runID)
	return models.Run{}
}
