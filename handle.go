package ticksched

import "fmt"

// Handle is the opaque identity of a running coroutine, returned by
// [Scheduler.Run]. It packs the slot index, the slot's generation counter at
// allocation time, and the owning segment into a single comparable value.
//
// A handle is valid iff the slot it indexes is occupied and the slot's
// stored generation equals the handle's. Generations increment on every slot
// recycle, so a handle held across a kill and reuse cycle is detectable as
// stale and never aliases the newer occupant. All scheduler operations
// accepting a Handle are no-ops when it is stale or invalid.
//
// The zero Handle is never valid.
//
// Layout (most to least significant): bit 63 is the validity tag
// distinguishing real handles from the zero value, bits 48-55 hold the
// segment, bits 16-47 the generation, bits 0-15 the slot index. Generation
// wraparound requires one specific handle to be retained across 2^32
// recycles of its own slot before a collision is possible; at a sustained
// 10k recycles per second of a single slot that is roughly five days of
// churn focused on one index, far beyond any realistic session.
type Handle uint64

const handleTag Handle = 1 << 63

func newHandle(segment Segment, index uint16, generation uint32) Handle {
	return handleTag |
		Handle(segment)<<48 |
		Handle(generation)<<16 |
		Handle(index)
}

// Segment returns the segment the handle's coroutine was started on.
// The result is meaningless for the zero Handle.
func (h Handle) Segment() Segment {
	return Segment(h >> 48 & 0xff)
}

func (h Handle) index() uint16 {
	return uint16(h & 0xffff)
}

func (h Handle) generation() uint32 {
	return uint32(h >> 16 & 0xffff_ffff)
}

func (h Handle) tagged() bool {
	return h&handleTag != 0
}

// String returns a human-readable representation of the handle.
func (h Handle) String() string {
	if !h.tagged() {
		return "Handle(zero)"
	}
	return fmt.Sprintf("Handle(%s:%d#%d)", h.Segment(), h.index(), h.generation())
}
