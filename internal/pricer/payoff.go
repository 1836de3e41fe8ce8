package pricer

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

// payoff returns the undiscounted settlement value of one option at terminal price s.
func payoff(kind models.OptionKind, strike, s float64) (float64, error) {
	switch kind {
	case models.OptionKindCall:
		return math.Max(s-strike, 0), nil
	case models.OptionKindPut:
		return math.Max(strike-s, 0), nil
	default:
		return 0, fmt.Errorf("%w: option kind %d is neither call nor put", ErrInvariantViolation, int(kind))
	}
}
