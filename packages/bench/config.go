package bench

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config controls a benchmark run
type Config struct {
	Inputs     []string      // SetURL inputs, replayed round-robin
	Iterations int           // total merges across all workers; 0 means until Duration
	Duration   time.Duration // upper bound on run time; 0 means until Iterations
	Workers    int           // handles resolving in parallel, one each
	Rate       float64       // merges per second across all workers; 0 is unpaced

	Thresholds Thresholds
}

// Thresholds for pass/fail criteria
type Thresholds struct {
	P50       time.Duration // 50th percentile latency
	P95       time.Duration // 95th percentile latency
	P99       time.Duration // 99th percentile latency
	ErrorRate float64       // maximum error rate (0.0 - 1.0)
}

// ThresholdResult holds the result of a threshold check
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Iterations: 10000,
		Workers:    1,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("at least one input is required")
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %s", c.Duration)
	}
	if c.Iterations == 0 && c.Duration == 0 {
		return errors.New("either iterations or duration must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	}
	if c.Thresholds.ErrorRate < 0 || c.Thresholds.ErrorRate > 1 {
		return fmt.Errorf("error rate threshold must be between 0 and 1, got %v", c.Thresholds.ErrorRate)
	}
	return nil
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*(<=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p99<5us,errors<1%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	valueStr := strings.TrimSpace(matches[3])

	switch metric {
	case "p50", "p95", "p99":
		d, err := time.ParseDuration(valueStr)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
		}
		switch metric {
		case "p50":
			t.P50 = d
		case "p95":
			t.P95 = d
		default:
			t.P99 = d
		}

	case "errors", "error", "errorrate":
		percent := strings.HasSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(valueStr, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", valueStr)
		}
		if percent {
			f = f / 100
		}
		t.ErrorRate = f

	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}

// HasThresholds returns true if any thresholds are configured
func (t Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.ErrorRate > 0
}
