package system

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coreloop/cx/o11y"
	"github.com/coreloop/cx/termination"
)

// HealthChecker is implemented by anything that wants to contribute to the
// service health checks. The ready and live checks may be nil if the checker
// has nothing to report for them.
type HealthChecker interface {
	HealthChecks() (name string, ready, live func(ctx context.Context) error)
}

type System struct {
	services        []func(context.Context) error
	healthChecks    []HealthChecker
	metricProducers []MetricProducer
	gaugeProducers  []GaugeProducer
	cleanups        []func(ctx context.Context) error
}

func New() *System {
	return &System{}
}

var terminationTestHook = termination.Handle

func (r *System) Run(ctx context.Context, delay time.Duration) (err error) {
	_, uptimeSpan := o11y.StartSpan(ctx, "system: run")
	defer o11y.End(uptimeSpan, &err)
	uptimeSpan.RecordMetric(o11y.Timing("system.run", "result"))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return terminationTestHook(ctx, delay)
	})

	for _, f := range r.services {
		// Capture the func, so we don't overwrite it when the goroutines start in parallel.
		f := f
		group.Go(func() error {
			return f(ctx)
		})
	}

	// if we have anything to report add the metrics worker
	if len(r.metricProducers) > 0 || len(r.gaugeProducers) > 0 {
		group.Go(metricsReporter(ctx, r.metricProducers, r.gaugeProducers))
	}

	return group.Wait()
}

func (r *System) AddService(s func(ctx context.Context) error) {
	r.services = append(r.services, s)
}

func (r *System) AddHealthCheck(h HealthChecker) {
	r.healthChecks = append(r.healthChecks, h)
}

func (r *System) AddMetrics(m MetricProducer) {
	r.metricProducers = append(r.metricProducers, m)
}

func (r *System) AddGauges(g GaugeProducer) {
	r.gaugeProducers = append(r.gaugeProducers, g)
}

func (r *System) AddCleanup(c func(ctx context.Context) error) {
	r.cleanups = append(r.cleanups, c)
}

func (r *System) HealthChecks() []HealthChecker {
	return r.healthChecks
}

func (r *System) Cleanup(ctx context.Context) {
	for _, c := range r.cleanups {
		err := c(ctx)
		if err != nil {
			o11y.Log(ctx, "system: cleanup error", o11y.Field("error", err))
		}
	}
}
