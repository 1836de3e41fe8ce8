package pricer

import (
	"errors"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/scenario"
)

var (
	// ErrConfiguration is returned when construction parameters are outside their
	// domain. It is the same sentinel the scenario generator uses.
	ErrConfiguration = scenario.ErrConfiguration

	// ErrInvariantViolation marks an internal value outside its declared domain,
	// such as an option kind other than call or put. It is a programming error.
	ErrInvariantViolation = errors.New("invariant violation")
)
