package ticksched

// Segment identifies one of the scheduler's four independent execution
// phases. Each segment owns its own slot pool and local-time accumulator.
//
// SegmentUpdate and SegmentLate are advanced with host-supplied variable
// delta times. SegmentFixed has a separate accumulator fed only by
// FixedUpdate ticks. SegmentLazy is the deferred lane: it shares the Update
// clock but is processed in bounded batches (see WithLazyBatchCap).
type Segment uint8

const (
	// SegmentUpdate is the primary variable-delta phase.
	SegmentUpdate Segment = iota
	// SegmentLate is the secondary variable-delta phase, ticked after
	// SegmentUpdate within a host frame.
	SegmentLate
	// SegmentFixed is the fixed-delta phase.
	SegmentFixed
	// SegmentLazy is the deferred, budget-capped lane driven from the
	// Update tick.
	SegmentLazy
)

// segmentCount is the number of Segment values.
const segmentCount = 4

// String returns a human-readable representation of the segment.
func (s Segment) String() string {
	switch s {
	case SegmentUpdate:
		return "Update"
	case SegmentLate:
		return "LateUpdate"
	case SegmentFixed:
		return "FixedUpdate"
	case SegmentLazy:
		return "Lazy"
	default:
		return "Unknown"
	}
}

func (s Segment) valid() bool {
	return s < segmentCount
}

// segmentState is the per-segment scheduler state. Slots, time, and the lazy
// scan cursor are owned exclusively by the driving goroutine.
type segmentState struct {
	pool slotPool

	// localTime is the segment's accumulated elapsed time, in seconds.
	// It is monotonically non-decreasing.
	localTime float64
	// delta is the delta time supplied to the segment's most recent tick.
	delta float64
	// tick counts process passes; slot.readyTick compares against it to
	// implement the one-frame sentinel without float comparisons.
	tick uint64

	// cursor is the lazy lane's persistent scan position (SegmentLazy only).
	cursor int

	// fixedStepSince records, for the variable-delta segments, whether a
	// FixedUpdate tick has occurred since this segment's last tick. Set at
	// the start of every FixedUpdate tick, cleared at the end of this
	// segment's own tick.
	fixedStepSince bool
}
