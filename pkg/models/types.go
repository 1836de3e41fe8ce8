package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionKind is the exercise side of a European option. The zero value is not a
// valid kind, so values decoded from untrusted input must be checked with Valid.
type OptionKind int

const (
	OptionKindCall OptionKind = iota + 1
	OptionKindPut
)

// ParseOptionKind accepts "call" or "put" in any case
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return OptionKindCall, nil
	case "put":
		return OptionKindPut, nil
	default:
		return 0, fmt.Errorf("unknown option kind %q (must be call or put)", s)
	}
}

// Valid reports whether k is CALL or PUT
func (k OptionKind) Valid() bool {
	return k == OptionKindCall || k == OptionKindPut
}

func (k OptionKind) String() string {
	switch k {
	case OptionKindCall:
		return "call"
	case OptionKindPut:
		return "put"
	default:
		return fmt.Sprintf("OptionKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler; used by both JSON and YAML.
func (k OptionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid option kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *OptionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseOptionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DefaultQuantity is the position size used when a request or config omits
// quantity. An explicit zero is kept.
const DefaultQuantity = 1.0

// PricingRequest describes one Monte Carlo pricing job
type PricingRequest struct {
	Strike       float64    `json:"strike" yaml:"strike"`
	Spot         float64    `json:"spot" yaml:"spot"`
	RiskFreeRate float64    `json:"risk_free_rate" yaml:"risk_free_rate"`
	Volatility   float64    `json:"volatility" yaml:"volatility"`
	TimeToExpiry float64    `json:"time_to_expiry" yaml:"time_to_expiry"` // year fraction
	OptionKind   OptionKind `json:"option_kind" yaml:"option_kind"`
	NumTimeSteps int        `json:"num_time_steps" yaml:"num_time_steps"`
	NumScenarios int        `json:"num_scenarios" yaml:"num_scenarios"`
	Concurrent   bool       `json:"concurrent" yaml:"concurrent"`
	InitialSeed  int64      `json:"initial_seed" yaml:"initial_seed"`
	Quantity     float64    `json:"quantity" yaml:"quantity"` // number of contracts
	Workers      int        `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// PricingResult is the serialisable outcome of a computed pricer. Value is Price
// as a fixed-point amount rounded to cents, for reporting.
type PricingResult struct {
	Price          float64         `json:"price"`
	Value          decimal.Decimal `json:"value"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	StdError       float64         `json:"std_error"`
	CI95Low        float64         `json:"ci95_low"`
	CI95High       float64         `json:"ci95_high"`
	DiscountFactor float64         `json:"discount_factor"`
	NumScenarios   int             `json:"num_scenarios"`
	Concurrent     bool            `json:"concurrent"`
	Workers        int             `json:"workers"`
	AnalyticPrice  float64         `json:"analytic_price"`
}

// Mode returns the execution mode label used for metrics
func (r PricingResult) Mode() string {
	return ExecutionMode(r.Concurrent)
}

// ExecutionMode maps the concurrent flag to "concurrent" or "sequential"
func ExecutionMode(concurrent bool) string {
	if concurrent {
		return "concurrent"
	}
	return "sequential"
}

// RunStatus represents the status of a pricing run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ParseRunStatus is case-insensitive; ok is false for unknown values
func ParseRunStatus(s string) (RunStatus, bool) {
	switch RunStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RunStatusPending:
		return RunStatusPending, true
	case RunStatusRunning:
		return RunStatusRunning, true
	case RunStatusCompleted:
		return RunStatusCompleted, true
	case RunStatusFailed:
		return RunStatusFailed, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is possible
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Run is a pricing request tracked by the daemon
type Run struct {
	ID        string         `json:"id"`
	Status    RunStatus      `json:"status"`
	Request   PricingRequest `json:"request"`
	Result    *PricingResult `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	StartedAt time.Time      `json:"started_at,omitzero"`
	EndedAt   time.Time      `json:"ended_at,omitzero"`
}
