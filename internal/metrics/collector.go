package metrics

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

// seriesKey identifies one series: a metric name and its canonical label set
type seriesKey struct {
	name   string
	labels string
}

// Collector keeps labelled metric series across pricing runs. It is safe for
// concurrent use.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	series    map[seriesKey][]models.MetricPoint
}

func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[seriesKey][]models.MetricPoint),
	}
}

// StartTime returns when collection started or was last cleared
func (c *Collector) StartTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startTime
}

// Record appends a point to the series for name and labels
func (c *Collector) Record(name string, value float64, timestamp time.Time, labels map[string]string) {
	key := seriesKey{name: name, labels: labelKey(labels)}
	point := models.MetricPoint{
		Timestamp: timestamp,
		Name:      name,
		Value:     value,
		Labels:    maps.Clone(labels),
	}

	c.mu.Lock()
	c.series[key] = append(c.series[key], point)
	c.mu.Unlock()
}

func (c *Collector) RecordNow(name string, value float64, labels map[string]string) {
	c.Record(name, value, time.Now(), labels)
}

// GetTimeSeries returns copies of the points of one series in recording order,
// or nil when the series does not exist.
func (c *Collector) GetTimeSeries(name string, labels map[string]string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[seriesKey{name: name, labels: labelKey(labels)}]
	if len(points) == 0 {
		return nil
	}
	out := make([]*models.MetricPoint, len(points))
	for i := range points {
		p := points[i]
		p.Labels = maps.Clone(p.Labels)
		out[i] = &p
	}
	return out
}

// GetAggregation summarises one series, or returns nil when nothing was recorded
func (c *Collector) GetAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	points := c.series[seriesKey{name: name, labels: labelKey(labels)}]
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	c.mu.RUnlock()

	return aggregate(values)
}

// GetMetricNames returns every recorded metric name, sorted
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range c.series {
		seen[key.name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Clear drops all series and restarts the collection clock
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series = make(map[seriesKey][]models.MetricPoint)
	c.startTime = time.Now()
}

// labelKey renders labels as "k1=v1,k2=v2," with keys sorted, so equal label
// sets always map to the same series.
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

// aggregate sorts values in place. Percentiles are empirical quantiles: the
// smallest value covering at least p of the samples.
func aggregate(values []float64) *models.Aggregation {
	if len(values) == 0 {
		return nil
	}
	slices.Sort(values)

	agg := &models.Aggregation{
		Count: int64(len(values)),
		Sum:   floats.Sum(values),
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  values[0],
		P50:   stat.Quantile(0.50, stat.Empirical, values, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, values, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, values, nil),
	}
	if len(values) > 1 {
		agg.Mean, agg.StdDev = stat.MeanStdDev(values, nil)
	}
	return agg
}
