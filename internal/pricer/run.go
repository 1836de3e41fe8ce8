package pricer

import (
	"github.com/shopspring/decimal"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

// Result summarises a computed Pricer, including the 95% interval and the
// analytic price of the same position for comparison.
func (pr *Pricer) Result() models.PricingResult {
	lo, hi, _ := pr.ConfidenceInterval(0.95)
	res := models.PricingResult{
		Price:          pr.price,
		Value:          decimal.NewFromFloat(pr.price).Round(2),
		ElapsedSeconds: pr.ElapsedTime(),
		StdError:       pr.StdError(),
		CI95Low:        lo,
		CI95High:       hi,
		DiscountFactor: pr.discountFactor,
		NumScenarios:   pr.numScenarios,
		Concurrent:     pr.concurrent,
		Workers:        pr.workers,
	}
	// JSON cannot carry a non-finite analytic price, so it is left at zero
	if bs, err := BlackScholes(pr.kind, pr.gen.Spot(), pr.strike, pr.gen.Drift(), pr.gen.Volatility(), pr.expiry); err == nil && utils.IsFinite(pr.quantity*bs) {
		res.AnalyticPrice = pr.quantity * bs
	}
	return res
}

// Run constructs a Pricer from p and returns its summary
func Run(p Params) (models.PricingResult, error) {
	pr, err := New(p)
	if err != nil {
		return models.PricingResult{}, err
	}
	return pr.Result(), nil
}
