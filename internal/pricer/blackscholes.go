package pricer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

// BlackScholes returns the closed-form price of one European option under the
// same GBM model the simulation uses. With zero volatility or a zero strike the
// terminal payoff is known and the discounted intrinsic value of the forward is
// returned.
func BlackScholes(kind models.OptionKind, spot, strike, r, sigma, t float64) (float64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: option kind %d is neither call nor put", ErrInvariantViolation, int(kind))
	}
	for _, v := range []float64{spot, strike, r, sigma, t} {
		if !utils.IsFinite(v) {
			return 0, fmt.Errorf("%w: black-scholes inputs must be finite", ErrConfiguration)
		}
	}
	if spot <= 0 || strike < 0 || sigma < 0 || t <= 0 {
		return 0, fmt.Errorf("%w: black-scholes needs spot > 0, strike >= 0, sigma >= 0, t > 0", ErrConfiguration)
	}

	df := math.Exp(-r * t)
	if sigma == 0 || strike == 0 {
		forward := spot * math.Exp(r*t)
		v, err := payoff(kind, strike, forward)
		if err != nil {
			return 0, err
		}
		return df * v, nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	n := distuv.UnitNormal
	if kind == models.OptionKindCall {
		return spot*n.CDF(d1) - strike*df*n.CDF(d2), nil
	}
	return strike*df*n.CDF(-d2) - spot*n.CDF(-d1), nil
}
