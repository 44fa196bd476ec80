package ticksched

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// DefaultLazyBatchCap is the default per-tick slot budget of the lazy lane.
const DefaultLazyBatchCap = 100

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger          *logiface.Logger[logiface.Event]
	reporter        FaultReporter
	lazyBatchCap    int
	initialCapacity int
	metricsEnabled  bool
}

// --- Scheduler Options ---

// SchedulerOption configures a Scheduler instance.
type SchedulerOption interface {
	applyScheduler(*schedulerOptions) error
}

// schedulerOptionImpl implements SchedulerOption.
type schedulerOptionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *schedulerOptionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithLogger attaches a structured logger. The scheduler logs coroutine
// faults (error level), ignored operations on stale handles (debug), and
// clamped negative delta times (warning). A nil logger disables logging,
// which is the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFaultReporter sets the collaborator receiving a [FaultReport] for
// every faulted coroutine, replacing the default logging reporter.
func WithFaultReporter(reporter FaultReporter) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		if reporter == nil {
			return fmt.Errorf("ticksched: WithFaultReporter: nil reporter")
		}
		opts.reporter = reporter
		return nil
	}}
}

// WithLazyBatchCap sets how many occupied slots the lazy lane may visit per
// Update tick. Visited-but-not-due slots consume budget too; that is the
// backpressure bounding per-tick cost for very large backlogs.
func WithLazyBatchCap(n int) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		if n <= 0 {
			return fmt.Errorf("ticksched: WithLazyBatchCap: cap must be positive, got %d", n)
		}
		opts.lazyBatchCap = n
		return nil
	}}
}

// WithInitialCapacity preallocates each segment's slot storage, avoiding
// growth allocations until the pool exceeds n concurrent coroutines.
func WithInitialCapacity(n int) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		if n < 0 || n > maxSlots {
			return fmt.Errorf("ticksched: WithInitialCapacity: capacity must be in [0, %d], got %d", maxSlots, n)
		}
		opts.initialCapacity = n
		return nil
	}}
}

// WithMetrics enables runtime metrics collection on the Scheduler.
// When enabled, counters can be read via Scheduler.Metrics(). The overhead
// is a handful of atomic increments per operation.
func WithMetrics(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveSchedulerOptions applies SchedulerOption instances to
// schedulerOptions.
func resolveSchedulerOptions(opts []SchedulerOption) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		lazyBatchCap: DefaultLazyBatchCap,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
