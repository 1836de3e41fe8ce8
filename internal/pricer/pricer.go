// Package pricer prices European options by Monte Carlo simulation of GBM paths.
//
// A Pricer is a compute-once value: New validates its inputs, derives one seed per
// scenario, evaluates every scenario either on the calling goroutine or on a
// bounded pool, and caches the price and the elapsed wall-clock time. Changing any
// input means constructing a new Pricer.
package pricer

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/scenario"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/config"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

// Params are the construction inputs of a Pricer
type Params struct {
	Strike       float64
	Spot         float64
	RiskFreeRate float64 // drift of the simulated paths and discount rate
	Volatility   float64
	TimeToExpiry float64 // year fraction
	OptionKind   models.OptionKind
	NumTimeSteps int
	NumScenarios int
	Concurrent   bool
	InitialSeed  int64
	Quantity     float64

	// Workers bounds the concurrent pool; 0 means runtime.GOMAXPROCS(0).
	Workers int
	// Logger receives one debug record per computation; nil means logger.Default.
	Logger *slog.Logger
}

// FromRequest converts a wire request into Params
func FromRequest(req models.PricingRequest) Params {
	return Params{
		Strike:       req.Strike,
		Spot:         req.Spot,
		RiskFreeRate: req.RiskFreeRate,
		Volatility:   req.Volatility,
		TimeToExpiry: req.TimeToExpiry,
		OptionKind:   req.OptionKind,
		NumTimeSteps: req.NumTimeSteps,
		NumScenarios: req.NumScenarios,
		Concurrent:   req.Concurrent,
		InitialSeed:  req.InitialSeed,
		Quantity:     req.Quantity,
		Workers:      req.Workers,
	}
}

// Request is the inverse of FromRequest; the logger is dropped.
func (p Params) Request() models.PricingRequest {
	return models.PricingRequest{
		Strike:       p.Strike,
		Spot:         p.Spot,
		RiskFreeRate: p.RiskFreeRate,
		Volatility:   p.Volatility,
		TimeToExpiry: p.TimeToExpiry,
		OptionKind:   p.OptionKind,
		NumTimeSteps: p.NumTimeSteps,
		NumScenarios: p.NumScenarios,
		Concurrent:   p.Concurrent,
		InitialSeed:  p.InitialSeed,
		Quantity:     p.Quantity,
		Workers:      p.Workers,
	}
}

// Pricer holds a computed Monte Carlo price. All fields are set by New and never
// change afterwards, so a Pricer is safe to read from any goroutine.
type Pricer struct {
	strike       float64
	expiry       float64
	kind         models.OptionKind
	quantity     float64
	concurrent   bool
	workers      int
	initialSeed  int64
	numScenarios int

	gen            *scenario.Generator
	discountFactor float64
	seeds          []int64

	price   float64
	stdDev  float64 // sample stddev of the per-scenario discounted payoffs
	elapsed time.Duration
}

// New validates p, runs the selected execution strategy and returns the computed
// Pricer. On error no Pricer is returned.
func New(p Params) (*Pricer, error) {
	if !p.OptionKind.Valid() {
		return nil, fmt.Errorf("%w: option kind %d is neither call nor put", ErrInvariantViolation, int(p.OptionKind))
	}
	if err := config.ValidateRequest(p.Request()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	gen, err := scenario.NewGenerator(p.Spot, p.NumTimeSteps, p.TimeToExpiry, p.RiskFreeRate, p.Volatility)
	if err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = utils.Clamp(workers, 1, p.NumScenarios)

	pr := &Pricer{
		strike:         p.Strike,
		expiry:         p.TimeToExpiry,
		kind:           p.OptionKind,
		quantity:       p.Quantity,
		concurrent:     p.Concurrent,
		workers:        workers,
		initialSeed:    p.InitialSeed,
		numScenarios:   p.NumScenarios,
		gen:            gen,
		discountFactor: math.Exp(-p.RiskFreeRate * p.TimeToExpiry),
	}

	if err := pr.calculate(); err != nil {
		return nil, err
	}

	logger.OrDefault(p.Logger).Debug("monte carlo price computed",
		"mode", models.ExecutionMode(pr.concurrent),
		"kind", pr.kind.String(),
		"scenarios", pr.numScenarios,
		"steps", gen.Steps(),
		"workers", pr.workers,
		"price", pr.price,
		"elapsed", utils.FormatDuration(pr.elapsed),
	)
	return pr, nil
}

// calculate times seed derivation, scenario evaluation and the reduction.
func (pr *Pricer) calculate() error {
	start := time.Now()

	pr.seeds = deriveSeeds(pr.initialSeed, pr.numScenarios)

	var (
		discounted []float64
		err        error
	)
	if pr.concurrent {
		discounted, err = pr.discountedPayoffsConcurrent()
	} else {
		discounted, err = pr.discountedPayoffsSequential()
	}
	if err != nil {
		return err
	}

	m := float64(pr.numScenarios)
	pr.price = pr.quantity * (1.0 / m) * utils.Sum(discounted)
	pr.elapsed = time.Since(start)
	if !utils.IsFinite(pr.price) {
		return fmt.Errorf("%w: price is %v, inputs overflow the simulation", ErrConfiguration, pr.price)
	}

	if len(discounted) > 1 {
		_, pr.stdDev = stat.MeanStdDev(discounted, nil)
		if !utils.IsFinite(pr.stdDev) {
			return fmt.Errorf("%w: payoff variance overflowed", ErrConfiguration)
		}
	}
	return nil
}

// deriveSeeds returns initSeed, initSeed+1, ..., initSeed+n-1.
func deriveSeeds(initSeed int64, n int) []int64 {
	seeds := make([]int64, n)
	for k := range seeds {
		seeds[k] = initSeed + int64(k)
	}
	return seeds
}

// discountedPayoff evaluates one scenario. It touches only immutable Pricer fields
// and a random stream private to this call.
// Finite inputs can still overflow (a large rate times the expiry, or a huge
// spot), so a non-finite terminal price or discounted payoff is rejected.
func (pr *Pricer) discountedPayoff(seed int64) (float64, error) {
	s := pr.gen.Terminal(seed)
	if !utils.IsFinite(s) {
		return 0, fmt.Errorf("%w: terminal price overflowed to %v", ErrConfiguration, s)
	}
	v, err := payoff(pr.kind, pr.strike, s)
	if err != nil {
		return 0, err
	}
	d := pr.discountFactor * v
	if !utils.IsFinite(d) {
		return 0, fmt.Errorf("%w: discounted payoff is %v", ErrConfiguration, d)
	}
	return d, nil
}

func (pr *Pricer) discountedPayoffsSequential() ([]float64, error) {
	out := make([]float64, 0, len(pr.seeds))
	for _, seed := range pr.seeds {
		v, err := pr.discountedPayoff(seed)
		if err != nil {
			return nil, fmt.Errorf("scenario seed %d: %w", seed, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// discountedPayoffsConcurrent dispatches one unit per scenario to a pool of
// pr.workers goroutines. Each unit writes only its own slot; Wait joins every unit
// and reports the first failure, in which case no payoffs are returned.
func (pr *Pricer) discountedPayoffsConcurrent() ([]float64, error) {
	out := make([]float64, len(pr.seeds))

	var g errgroup.Group
	g.SetLimit(pr.workers)
	for i, seed := range pr.seeds {
		g.Go(func() error {
			v, err := pr.discountedPayoff(seed)
			if err != nil {
				return fmt.Errorf("scenario seed %d: %w", seed, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Price returns the cached estimate q * mean(discounted payoff)
func (pr *Pricer) Price() float64 { return pr.price }

// ElapsedTime returns the computation time in seconds
func (pr *Pricer) ElapsedTime() float64 { return pr.elapsed.Seconds() }

// Elapsed returns the computation time
func (pr *Pricer) Elapsed() time.Duration { return pr.elapsed }

// Seeds returns a copy of the per-scenario seeds in scenario order
func (pr *Pricer) Seeds() []int64 {
	out := make([]int64, len(pr.seeds))
	copy(out, pr.seeds)
	return out
}

func (pr *Pricer) DiscountFactor() float64 { return pr.discountFactor }

func (pr *Pricer) Concurrent() bool { return pr.concurrent }

func (pr *Pricer) NumScenarios() int { return pr.numScenarios }

// Workers returns the effective pool size, after defaulting and clamping to [1, M].
func (pr *Pricer) Workers() int { return pr.workers }

// StdDev is the sample standard deviation of the per-scenario discounted payoffs
// of a single contract. It is zero for a single scenario.
func (pr *Pricer) StdDev() float64 { return pr.stdDev }

// StdError is the standard error of Price: |q| * StdDev / sqrt(M).
func (pr *Pricer) StdError() float64 {
	return math.Abs(pr.quantity) * pr.stdDev / math.Sqrt(float64(pr.numScenarios))
}

// ConfidenceInterval returns the two-sided normal interval around Price at the
// given level, e.g. 0.95.
func (pr *Pricer) ConfidenceInterval(level float64) (lo, hi float64, err error) {
	if !(level > 0 && level < 1) {
		return 0, 0, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrConfiguration, level)
	}
	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	half := z * pr.StdError()
	return pr.price - half, pr.price + half, nil
}
