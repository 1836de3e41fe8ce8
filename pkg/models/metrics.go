package models

import "time"

// MetricPoint is a single metric value at a point in time
type MetricPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Aggregation holds summary statistics of a metric series
type Aggregation struct {
	Count  int64   `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// ModeStats aggregates the completed pricings of one execution mode
type ModeStats struct {
	Mode                  string  `json:"mode"`
	Runs                  int64   `json:"runs"`
	TotalScenarios        int64   `json:"total_scenarios"`
	MeanElapsedMs         float64 `json:"mean_elapsed_ms"`
	MinElapsedMs          float64 `json:"min_elapsed_ms"`
	MaxElapsedMs          float64 `json:"max_elapsed_ms"`
	P95ElapsedMs          float64 `json:"p95_elapsed_ms"`
	MeanScenariosPerSec   float64 `json:"mean_scenarios_per_sec"`
	MeanMicrosPerScenario float64 `json:"mean_micros_per_scenario"`
}

// PricingMetrics is the metrics view served by the daemon. Speedup is the mean
// sequential time per scenario over the mean concurrent time per scenario and is
// zero until both modes have completed at least one run.
type PricingMetrics struct {
	StartTime   time.Time             `json:"start_time"`
	Modes       map[string]*ModeStats `json:"modes"`
	Failures    int64                 `json:"failures"`
	Speedup     float64               `json:"speedup,omitempty"`
	MetricNames []string              `json:"metric_names"` // series recorded so far

}
