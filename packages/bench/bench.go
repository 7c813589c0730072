package bench

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

// Runner replays SetURL inputs against client handles and times each merge
type Runner struct {
	config  *Config
	base    *http.Config
	metrics *Metrics
	limiter *rate.Limiter
	log     *logrus.Logger
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithLogger sets the logger for run lifecycle messages
func WithLogger(log *logrus.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRunner creates a runner that initializes every worker handle from base.
func NewRunner(config *Config, base *http.Config, opts ...RunnerOption) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bench config: %w", err)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	l := logrus.New()
	l.Out = io.Discard
	r := &Runner{
		config:  config,
		base:    base,
		metrics: NewMetrics(),
		log:     l,
	}
	if config.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the benchmark. It stops after Iterations merges, after
// Duration, or when ctx is cancelled, whichever comes first. A cancelled ctx
// is reported alongside the partial summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runCtx := ctx
	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	clients := make([]*http.Client, 0, r.config.Workers)
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()
	for i := 0; i < r.config.Workers; i++ {
		c, err := http.NewClient(r.base, http.WithLogger(r.log))
		if err != nil {
			return nil, fmt.Errorf("worker %d: %w", i, err)
		}
		clients = append(clients, c)
	}

	r.log.WithFields(logrus.Fields{
		"workers":    r.config.Workers,
		"inputs":     len(r.config.Inputs),
		"iterations": r.config.Iterations,
		"duration":   r.config.Duration,
		"rate":       r.config.Rate,
	}).Debug("Bench started")

	var (
		next atomic.Int64
		wg   sync.WaitGroup
	)
	r.metrics.Start()
	for _, c := range clients {
		wg.Add(1)
		go func(c *http.Client) {
			defer wg.Done()
			r.worker(runCtx, c, &next)
		}(c)
	}
	wg.Wait()
	r.metrics.Stop()

	summary := r.metrics.GetSummary(r.config.Inputs)
	r.log.WithFields(logrus.Fields{
		"total":  summary.Total,
		"errors": summary.Errors,
		"p99":    summary.P99,
	}).Debug("Bench finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) worker(ctx context.Context, c *http.Client, next *atomic.Int64) {
	inputs := r.config.Inputs
	for {
		if ctx.Err() != nil {
			return
		}
		i := next.Add(1) - 1
		if r.config.Iterations > 0 && i >= int64(r.config.Iterations) {
			return
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
		}

		input := inputs[i%int64(len(inputs))]
		start := time.Now()
		err := c.SetURL(input)
		r.metrics.Record(input, time.Since(start), err)
	}
}

// Metrics returns the collector used by the runner
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}
