package ticksched

import "sync/atomic"

// Metrics is a snapshot of scheduler statistics, collected when the
// scheduler was created with [WithMetrics]. Counters are cumulative;
// Occupied is the current number of live (including paused) coroutines per
// segment.
//
// The counters are maintained with atomic increments, so [Scheduler.Metrics]
// may be called from a goroutine other than the driving one; the Occupied
// gauges, however, read pool state and are only meaningful from the driving
// goroutine.
type Metrics struct {
	// Started counts coroutines accepted by Run/RunInGroup.
	Started uint64
	// Resumed counts individual resumption steps, including transits.
	Resumed uint64
	// Completed counts coroutines that terminated normally.
	Completed uint64
	// Faulted counts coroutines freed due to a fault.
	Faulted uint64
	// Killed counts coroutines freed by Kill/KillAll/KillSegment/KillGroup.
	Killed uint64

	// Occupied is the live slot count per segment, indexed by Segment.
	Occupied [segmentCount]int
}

type metricsState struct {
	started   atomic.Uint64
	resumed   atomic.Uint64
	completed atomic.Uint64
	faulted   atomic.Uint64
	killed    atomic.Uint64
}

// Metrics returns a snapshot of the scheduler's statistics. The zero
// Metrics is returned when collection was not enabled via [WithMetrics].
func (s *Scheduler) Metrics() Metrics {
	m := s.metrics
	if m == nil {
		return Metrics{}
	}
	out := Metrics{
		Started:   m.started.Load(),
		Resumed:   m.resumed.Load(),
		Completed: m.completed.Load(),
		Faulted:   m.faulted.Load(),
		Killed:    m.killed.Load(),
	}
	for i := range s.segments {
		out.Occupied[i] = s.segments[i].pool.occupied
	}
	return out
}
