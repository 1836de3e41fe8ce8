package pricerd

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/metrics"
	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricer"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/config"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

var (
	ErrRunIDMissing = errors.New("run_id is required")
	ErrRunTerminal  = errors.New("run is terminal")
)

// RunExecutor prices stored runs. A started run cannot be cancelled; pricing
// always runs to completion or failure.
type RunExecutor struct {
	store     *RunStore
	collector *metrics.Collector
	notifier  *Notifier
	log       *slog.Logger

	wg sync.WaitGroup
}

// NewRunExecutor creates an executor. A nil collector gets a fresh one.
func NewRunExecutor(store *RunStore, collector *metrics.Collector) *RunExecutor {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &RunExecutor{
		store:     store,
		collector: collector,
		notifier:  NewNotifier(),
		log:       logger.Default,
	}
}

// SubmitOptions control how Submit stores and runs a request
type SubmitOptions struct {
	RunID    string // generated when empty
	Wait     bool   // price on the calling goroutine
	Callback Callback
}

// SetLogger replaces the logger used for run lifecycle events
func (e *RunExecutor) SetLogger(l *slog.Logger) {
	e.log = logger.OrDefault(l)
}

func (e *RunExecutor) Collector() *metrics.Collector {
	return e.collector
}

func (e *RunExecutor) Notifier() *Notifier {
	return e.notifier
}

// Submit validates req, stores it as a new run and prices it. With Wait the run is
// priced on the calling goroutine and the terminal run is returned, together with
// the pricing error if it failed. Otherwise the running run is returned at once.
// Invalid requests are rejected before anything is stored.
func (e *RunExecutor) Submit(req models.PricingRequest, opts SubmitOptions) (models.Run, error) {
	if err := config.ValidateRequest(req); err != nil {
		return models.Run{}, fmt.Errorf("%w: %v", pricer.ErrConfiguration, err)
	}

	run, err := e.store.Create(opts.RunID, req)
	if err != nil {
		return models.Run{}, err
	}
	e.log.Info("run created", "run_id", run.ID, "mode", models.ExecutionMode(req.Concurrent), "scenarios", req.NumScenarios)

	if opts.Wait {
		return e.execute(run.ID, opts.Callback)
	}
	return e.start(run.ID, opts.Callback)
}

// start marks a pending run as running and prices it on its own goroutine.
// Starting a run that is already running is a no-op.
func (e *RunExecutor) start(runID string, cb Callback) (models.Run, error) {
	run, started, err := e.begin(runID)
	if err != nil || !started {
		return run, err
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		// failures are logged and stored on the run
		_, _ = e.price(run, cb)
	}()
	return run, nil
}

// execute prices a pending run on the calling goroutine and returns the terminal run
func (e *RunExecutor) execute(runID string, cb Callback) (models.Run, error) {
	run, started, err := e.begin(runID)
	if err != nil || !started {
		return run, err
	}
	return e.price(run, cb)
}

// Wait blocks until every asynchronously submitted run has finished
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

// begin moves a pending run to running. started is false when the run was
// already running, in which case the caller must not price it again.
func (e *RunExecutor) begin(runID string) (models.Run, bool, error) {
	if runID == "" {
		return models.Run{}, false, ErrRunIDMissing
	}

	return e.store.StartRun(runID)
}

// price runs the pricer for a running run, stores the outcome and reports the
// terminal run to cb.
func (e *RunExecutor) price(run models.Run, cb Callback) (models.Run, error) {
	log := e.log.With("run_id", run.ID)
	mode := models.ExecutionMode(run.Request.Concurrent)

	params := pricer.FromRequest(run.Request)
	params.Logger = log

	log.Info("pricing started", "mode", mode, "scenarios", run.Request.NumScenarios, "steps", run.Request.NumTimeSteps)
	result, err := pricer.Run(params)
	if err != nil {
		log.Error("pricing failed", "mode", mode, "error", err)
		metrics.RecordFailure(e.collector, mode, time.Now())
		failed, setErr := e.store.SetStatus(run.ID, models.RunStatusFailed, err.Error())
		if setErr != nil {
			log.Error("failed to set failed status", "error", setErr)
			return models.Run{}, err
		}
		e.notifier.Notify(cb, failed)
		return failed, err
	}

	metrics.RecordPricing(e.collector, result, time.Now())
	if err := e.store.SetResult(run.ID, result); err != nil {
		log.Error("failed to store result", "error", err)
		return models.Run{}, err
	}
	completed, err := e.store.SetStatus(run.ID, models.RunStatusCompleted, "")
	if err != nil {
		log.Error("failed to set completed status", "error", err)
		return models.Run{}, err
	}

	log.Info("run completed",
		"mode", mode,
		"price", result.Price,
		"std_error", result.StdError,
		"elapsed_seconds", result.ElapsedSeconds,
	)
	e.notifier.Notify(cb, completed)
	return completed, nil
}
