package metrics

import (
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

// Pricing metric names
const (
	MetricPricingElapsedMs    = "pricing_elapsed_ms"
	MetricPricingScenarios    = "pricing_scenarios"
	MetricScenariosPerSec     = "pricing_scenarios_per_sec"
	MetricMicrosPerScenario   = "pricing_micros_per_scenario"
	MetricPricingFailureCount = "pricing_failure_count"
	LabelMode                 = "mode"
)

var executionModes = []string{models.ExecutionMode(false), models.ExecutionMode(true)}

// ModeLabels creates the label set for an execution mode
func ModeLabels(mode string) map[string]string {
	return map[string]string{LabelMode: mode}
}

// RecordPricing records one completed pricing under its execution mode
func RecordPricing(collector *Collector, res models.PricingResult, timestamp time.Time) {
	labels := ModeLabels(res.Mode())
	collector.Record(MetricPricingElapsedMs, res.ElapsedSeconds*1000, timestamp, labels)
	collector.Record(MetricPricingScenarios, float64(res.NumScenarios), timestamp, labels)
	if res.NumScenarios > 0 {
		collector.Record(MetricMicrosPerScenario, res.ElapsedSeconds*1e6/float64(res.NumScenarios), timestamp, labels)
	}
	if res.ElapsedSeconds > 0 {
		collector.Record(MetricScenariosPerSec, float64(res.NumScenarios)/res.ElapsedSeconds, timestamp, labels)
	}
}

// RecordFailure records a pricing that ended with an error
func RecordFailure(collector *Collector, mode string, timestamp time.Time) {
	collector.Record(MetricPricingFailureCount, 1, timestamp, ModeLabels(mode))
}

// PricingSummary builds the per-mode view of everything recorded so far
func PricingSummary(collector *Collector) *models.PricingMetrics {
	summary := &models.PricingMetrics{
		StartTime:   collector.StartTime(),
		Modes:       make(map[string]*models.ModeStats),
		MetricNames: collector.GetMetricNames(),
	}

	for _, mode := range executionModes {
		labels := ModeLabels(mode)

		if failures := collector.GetAggregation(MetricPricingFailureCount, labels); failures != nil {
			summary.Failures += failures.Count
		}

		elapsed := collector.GetAggregation(MetricPricingElapsedMs, labels)
		if elapsed == nil {
			continue
		}
		stats := &models.ModeStats{
			Mode:          mode,
			Runs:          elapsed.Count,
			MeanElapsedMs: elapsed.Mean,
			MinElapsedMs:  elapsed.Min,
			MaxElapsedMs:  elapsed.Max,
			P95ElapsedMs:  elapsed.P95,
		}
		if agg := collector.GetAggregation(MetricPricingScenarios, labels); agg != nil {
			stats.TotalScenarios = int64(agg.Sum)
		}
		if agg := collector.GetAggregation(MetricScenariosPerSec, labels); agg != nil {
			stats.MeanScenariosPerSec = agg.Mean
		}
		if agg := collector.GetAggregation(MetricMicrosPerScenario, labels); agg != nil {
			stats.MeanMicrosPerScenario = agg.Mean
		}
		summary.Modes[mode] = stats
	}

	seq := summary.Modes[models.ExecutionMode(false)]
	conc := summary.Modes[models.ExecutionMode(true)]
	if seq != nil && conc != nil && conc.MeanMicrosPerScenario > 0 {
		summary.Speedup = seq.MeanMicrosPerScenario / conc.MeanMicrosPerScenario
	}
	return summary
}
