package ticksched

import (
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// logifaceLogger is the generified logger type accepted by [WithLogger];
// use [logiface.Logger.Logger] to generify a typed logger.
type logifaceLogger = logiface.Logger[logiface.Event]

// faultLogLimiter bounds how often the default fault reporter logs for any
// one group, so a hot-looping faulty coroutine cannot flood the log.
type faultLogLimiter interface {
	Allow(category any) (time.Time, bool)
}

func newFaultLogLimiter() faultLogLimiter {
	return catrate.NewLimiter(map[time.Duration]int{
		time.Second: 10,
		time.Minute: 100,
	})
}

// defaultFaultReporter is installed when no [WithFaultReporter] option is
// given. Suppressed (rate-limited) reports are counted nowhere: the slot is
// already freed and the scheduler's behavior does not depend on reporting.
func (s *Scheduler) defaultFaultReporter(report FaultReport) {
	if s.logger == nil {
		return
	}
	if _, ok := s.faultLimiter.Allow(report.Group); !ok {
		return
	}
	s.logger.Err().
		Err(report.Err).
		Str("group", report.Group).
		Stringer("segment", report.Segment).
		Stringer("handle", report.Handle).
		Log("coroutine faulted")
}

// logStaleHandle records an operation ignored because its handle was stale
// or invalid. Not an error: stale handles are an expected consequence of
// slot recycling.
func (s *Scheduler) logStaleHandle(op string, h Handle) {
	s.logger.Debug().
		Str("op", op).
		Stringer("handle", h).
		Log("ignored operation on stale handle")
}

// logNegativeDelta records a host tick that violated the non-negative
// delta-time contract; the delta is clamped to zero to keep local time
// monotonic.
func (s *Scheduler) logNegativeDelta(segment Segment, dt float64) {
	s.logger.Warning().
		Stringer("segment", segment).
		Float64("delta", dt).
		Log("negative delta time clamped to zero")
}
