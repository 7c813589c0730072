package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter handles output for benchmark runs
type Reporter struct {
	writer  io.Writer
	noColor bool
	verbose bool

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// WithVerbose enables the per-input breakdown
func WithVerbose(verbose bool) ReporterOption {
	return func(r *Reporter) {
		r.verbose = verbose
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.noColor {
		color.NoColor = true
	}
	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)

	return r
}

// Header prints the run header
func (r *Reporter) Header(version, target string, config *Config) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "hitclient bench %s\n", version)
	r.cyan.Fprintf(r.writer, "Target: %s\n", target)

	details := []string{fmt.Sprintf("Workers: %d", config.Workers)}
	if config.Iterations > 0 {
		details = append(details, fmt.Sprintf("Iterations: %s", formatNumber(int64(config.Iterations))))
	}
	if config.Duration > 0 {
		details = append(details, fmt.Sprintf("Duration: %s", config.Duration))
	}
	if config.Rate > 0 {
		details = append(details, fmt.Sprintf("Rate: %.0f/s", config.Rate))
	}
	fmt.Fprintf(r.writer, "%s\n\n", strings.Join(details, " | "))
}

// Summary prints the final summary
func (r *Reporter) Summary(s *Summary, thresholdResults []ThresholdResult) {
	r.bold.Fprintln(r.writer, "BENCH SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	fmt.Fprintf(r.writer, "Duration:   %s\n", formatDuration(s.Duration))
	fmt.Fprintf(r.writer, "Merges:     ")
	r.bold.Fprintf(r.writer, "%s", formatNumber(s.Total))
	fmt.Fprintf(r.writer, " (%.0f/s)\n", s.OpsPerSec)

	fmt.Fprintf(r.writer, "Rejected:   ")
	if s.Errors > 0 {
		r.red.Fprintf(r.writer, "%s", formatNumber(s.Errors))
	} else {
		fmt.Fprintf(r.writer, "%s", formatNumber(s.Errors))
	}
	fmt.Fprintf(r.writer, " (%.1f%%)\n", s.ErrorRate*100)

	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "LATENCY")
	fmt.Fprintf(r.writer, "  p50: %-8s | p95: %-8s | p99: %-8s | max: %s\n",
		formatLatency(s.P50), formatLatency(s.P95), formatLatency(s.P99), formatLatency(s.Max))
	fmt.Fprintf(r.writer, "  min: %-8s | mean: %-7s | stddev: %s\n",
		formatLatency(s.Min), formatLatency(s.Mean), formatLatency(s.StdDev))

	if r.verbose && len(s.Inputs) > 0 {
		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "PER-INPUT BREAKDOWN")
		for _, in := range s.Inputs {
			fmt.Fprintf(r.writer, "  %s:\n", in.Input)
			fmt.Fprintf(r.writer, "    Total: %s | Rejected: %s | p50: %s | p99: %s\n",
				formatNumber(in.Total), formatNumber(in.Errors), formatLatency(in.P50), formatLatency(in.P99))
		}
	}

	if len(thresholdResults) > 0 {
		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "THRESHOLDS")
		allPassed := true
		for _, tr := range thresholdResults {
			if tr.Passed {
				r.green.Fprintf(r.writer, "  ✓ ")
			} else {
				r.red.Fprintf(r.writer, "  ✗ ")
				allPassed = false
			}
			fmt.Fprintf(r.writer, "%s %s    (actual: %s)\n", tr.Name, tr.Expected, tr.Actual)
		}

		fmt.Fprintln(r.writer)
		if allPassed {
			r.green.Fprintln(r.writer, "All thresholds passed!")
		} else {
			r.red.Fprintln(r.writer, "Some thresholds failed!")
		}
	}

	fmt.Fprintln(r.writer)
}

// JSONSummary outputs the summary as JSON; latencies are in nanoseconds
func (r *Reporter) JSONSummary(s *Summary, thresholdResults []ThresholdResult) error {
	output := map[string]any{
		"duration": s.Duration.String(),
		"merges": map[string]any{
			"total":    s.Total,
			"success":  s.Success,
			"rejected": s.Errors,
		},
		"rates": map[string]any{
			"opsPerSec": s.OpsPerSec,
			"errorRate": s.ErrorRate,
		},
		"latencyNs": map[string]any{
			"p50":    s.P50.Nanoseconds(),
			"p95":    s.P95.Nanoseconds(),
			"p99":    s.P99.Nanoseconds(),
			"min":    s.Min.Nanoseconds(),
			"max":    s.Max.Nanoseconds(),
			"mean":   s.Mean.Nanoseconds(),
			"stddev": s.StdDev.Nanoseconds(),
		},
	}

	if len(thresholdResults) > 0 {
		thresholds := make([]map[string]any, len(thresholdResults))
		for i, tr := range thresholdResults {
			thresholds[i] = map[string]any{
				"name":     tr.Name,
				"passed":   tr.Passed,
				"expected": tr.Expected,
				"actual":   tr.Actual,
			}
		}
		output["thresholds"] = thresholds
	}

	if len(s.Inputs) > 0 {
		inputs := make([]map[string]any, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = map[string]any{
				"input":    in.Input,
				"total":    in.Total,
				"rejected": in.Errors,
				"p50":      in.P50.Nanoseconds(),
				"p99":      in.P99.Nanoseconds(),
				"mean":     in.Mean.Nanoseconds(),
			}
		}
		output["inputs"] = inputs
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// formatLatency formats latency for display
func formatLatency(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1e3)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)

	start := len(s) % 3
	if start == 0 {
		start = 3
	}

	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}

	return string(result)
}
