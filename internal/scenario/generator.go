// Package scenario generates discretized geometric Brownian motion price paths.
//
// A Generator holds only immutable model parameters. Every call to Generate or
// Terminal builds its own random stream from the seed it is given, so one
// Generator can be shared by any number of goroutines.
package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

// ErrConfiguration is returned for model parameters outside their domain.
var ErrConfiguration = errors.New("configuration error")

// Generator produces price paths S_0..S_N for fixed model parameters
type Generator struct {
	spot       float64
	steps      int
	dt         float64
	drift      float64
	volatility float64

	// per-step constants of the exact log-price update
	stepDrift float64 // (mu - sigma^2/2) * dt
	stepVol   float64 // sigma * sqrt(dt)
}

// NewGenerator validates the model parameters and precomputes the step constants.
func NewGenerator(spot float64, numTimeSteps int, timeToExpiry, drift, volatility float64) (*Generator, error) {
	if numTimeSteps <= 0 {
		return nil, fmt.Errorf("%w: num_time_steps must be positive, got %d", ErrConfiguration, numTimeSteps)
	}
	if !utils.IsFinite(volatility) || volatility < 0 {
		return nil, fmt.Errorf("%w: volatility must be finite and non-negative, got %v", ErrConfiguration, volatility)
	}
	if !utils.IsFinite(spot) || spot <= 0 {
		return nil, fmt.Errorf("%w: spot must be finite and positive, got %v", ErrConfiguration, spot)
	}
	if !utils.IsFinite(timeToExpiry) || timeToExpiry <= 0 {
		return nil, fmt.Errorf("%w: time_to_expiry must be finite and positive, got %v", ErrConfiguration, timeToExpiry)
	}
	if !utils.IsFinite(drift) {
		return nil, fmt.Errorf("%w: drift must be finite, got %v", ErrConfiguration, drift)
	}

	dt := timeToExpiry / float64(numTimeSteps)
	return &Generator{
		spot:       spot,
		steps:      numTimeSteps,
		dt:         dt,
		drift:      drift,
		volatility: volatility,
		stepDrift:  (drift - volatility*volatility/2.0) * dt,
		stepVol:    volatility * math.Sqrt(dt),
	}, nil
}

// Generate returns the full path for seed: N+1 prices, path[0] is the spot.
func (g *Generator) Generate(seed int64) []float64 {
	path := make([]float64, g.steps+1)
	path[0] = g.spot

	rs := utils.NewRandStream(seed)
	price := g.spot
	for i := 1; i <= g.steps; i++ {
		price = g.next(price, rs.StdNormal())
		path[i] = price
	}
	return path
}

// Terminal walks the same path as Generate without storing it and returns S_N.
// Terminal(seed) == Generate(seed)[Steps()] bit for bit.
func (g *Generator) Terminal(seed int64) float64 {
	rs := utils.NewRandStream(seed)
	price := g.spot
	for i := 1; i <= g.steps; i++ {
		price = g.next(price, rs.StdNormal())
	}
	return price
}

func (g *Generator) next(prev, z float64) float64 {
	return prev * math.Exp(g.stepDrift+g.stepVol*z)
}

// Spot returns S_0
func (g *Generator) Spot() float64 { return g.spot }

// Steps returns N
func (g *Generator) Steps() int { return g.steps }

// Dt returns the step length T/N in years
func (g *Generator) Dt() float64 { return g.dt }

// Drift returns the annualized drift
func (g *Generator) Drift() float64 { return g.drift }

// Volatility returns the annualized volatility
func (g *Generator) Volatility() float64 { return g.volatility }
