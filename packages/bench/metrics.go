package bench

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// merges run in well under a microsecond, so latency is kept in nanoseconds
const (
	minLatencyNs = 1
	maxLatencyNs = int64(10 * time.Second)
	sigFigs      = 3
)

// Metrics collects merge latencies
type Metrics struct {
	mu sync.Mutex

	total   atomic.Int64
	success atomic.Int64
	errors  atomic.Int64

	histogram *hdrhistogram.Histogram
	perInput  map[string]*InputMetrics

	startTime time.Time
	endTime   time.Time
}

// InputMetrics holds metrics for one input
type InputMetrics struct {
	Input     string
	Total     int64
	Errors    int64
	Histogram *hdrhistogram.Histogram
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		histogram: hdrhistogram.New(minLatencyNs, maxLatencyNs, sigFigs),
		perInput:  make(map[string]*InputMetrics),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

func clampNs(d time.Duration) int64 {
	ns := d.Nanoseconds()
	if ns < minLatencyNs {
		return minLatencyNs
	}
	if ns > maxLatencyNs {
		return maxLatencyNs
	}
	return ns
}

// Record records one merge of input
func (m *Metrics) Record(input string, d time.Duration, err error) {
	m.total.Add(1)
	if err != nil {
		m.errors.Add(1)
	} else {
		m.success.Add(1)
	}

	ns := clampNs(d)

	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.histogram.RecordValue(ns)

	im, ok := m.perInput[input]
	if !ok {
		im = &InputMetrics{
			Input:     input,
			Histogram: hdrhistogram.New(minLatencyNs, maxLatencyNs, sigFigs),
		}
		m.perInput[input] = im
	}
	im.Total++
	if err != nil {
		im.Errors++
	}
	_ = im.Histogram.RecordValue(ns)
}

// Summary is the final result of a run
type Summary struct {
	Duration  time.Duration
	Total     int64
	Success   int64
	Errors    int64
	OpsPerSec float64
	ErrorRate float64

	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration

	Inputs []InputSummary
}

// InputSummary holds the summary for a single input
type InputSummary struct {
	Input  string
	Total  int64
	Errors int64
	P50    time.Duration
	P99    time.Duration
	Mean   time.Duration
}

// GetSummary returns the metrics summary. Inputs keep the order given in order.
func (m *Metrics) GetSummary(order []string) *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	total := m.total.Load()
	errs := m.errors.Load()

	s := &Summary{
		Duration: duration,
		Total:    total,
		Success:  m.success.Load(),
		Errors:   errs,
		P50:      time.Duration(m.histogram.ValueAtQuantile(50)),
		P95:      time.Duration(m.histogram.ValueAtQuantile(95)),
		P99:      time.Duration(m.histogram.ValueAtQuantile(99)),
		Min:      time.Duration(m.histogram.Min()),
		Max:      time.Duration(m.histogram.Max()),
		Mean:     time.Duration(m.histogram.Mean()),
		StdDev:   time.Duration(m.histogram.StdDev()),
	}
	if duration.Seconds() > 0 {
		s.OpsPerSec = float64(total) / duration.Seconds()
	}
	if total > 0 {
		s.ErrorRate = float64(errs) / float64(total)
	}

	seen := make(map[string]bool, len(order))
	for _, in := range order {
		im, ok := m.perInput[in]
		if !ok || seen[in] {
			continue
		}
		seen[in] = true
		s.Inputs = append(s.Inputs, InputSummary{
			Input:  in,
			Total:  im.Total,
			Errors: im.Errors,
			P50:    time.Duration(im.Histogram.ValueAtQuantile(50)),
			P99:    time.Duration(im.Histogram.ValueAtQuantile(99)),
			Mean:   time.Duration(im.Histogram.Mean()),
		})
	}

	return s
}

// EvaluateThresholds evaluates the thresholds against the summary
func EvaluateThresholds(s *Summary, t Thresholds) []ThresholdResult {
	var results []ThresholdResult

	latency := func(name string, limit, actual time.Duration) {
		if limit > 0 {
			results = append(results, ThresholdResult{
				Name:     name,
				Passed:   actual <= limit,
				Expected: "< " + limit.String(),
				Actual:   actual.String(),
			})
		}
	}
	latency("p50", t.P50, s.P50)
	latency("p95", t.P95, s.P95)
	latency("p99", t.P99, s.P99)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   s.ErrorRate <= t.ErrorRate,
			Expected: formatPercent(t.ErrorRate),
			Actual:   formatPercent(s.ErrorRate),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
