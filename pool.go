package ticksched

import "container/heap"

// maxSlots is the per-segment pool capacity implied by the 16-bit slot
// index in the handle encoding. Growth beyond it is fatal: there is no
// fallback allocation strategy.
const maxSlots = 1 << 16

// slot is one reusable storage unit within a segment's pool. Memory is
// retained across recycles; occupied distinguishes live entries.
type slot struct {
	task  Task
	group string

	// waitUntil is compared against the segment's local time.
	waitUntil float64
	// readyTick is the earliest process pass allowed to resume the slot;
	// it implements the one-frame sentinel and keeps coroutines started
	// mid-pass from being resumed twice in the same pass.
	readyTick uint64

	generation uint32
	paused     bool
	occupied   bool
}

// freeHeap is a min-heap of free slot indexes, so allocation always reuses
// the lowest-index free slot and steady churn does not grow the pool.
type freeHeap []uint16

func (h freeHeap) Len() int           { return len(h) }
func (h freeHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h freeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *freeHeap) Push(x any) {
	*h = append(*h, x.(uint16))
}

func (h *freeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// slotPool is a growable, array-backed store of coroutine slots. Once the
// steady-state slot count is reached, allocation and free are amortized
// allocation-free.
type slotPool struct {
	slots    []slot
	free     freeHeap
	occupied int
}

// allocate claims the lowest-index free slot, growing the backing storage by
// one entry if none is free, and returns the slot's index and generation.
// The slot's timing fields are left for the caller to initialize.
func (p *slotPool) allocate(task Task, group string) (uint16, uint32) {
	var index uint16
	if len(p.free) > 0 {
		index = heap.Pop(&p.free).(uint16)
	} else {
		if len(p.slots) >= maxSlots {
			panic("ticksched: pool: segment exceeds 65536 concurrent coroutines")
		}
		p.slots = append(p.slots, slot{})
		index = uint16(len(p.slots) - 1)
	}
	sl := &p.slots[index]
	sl.task = task
	sl.group = group
	sl.paused = false
	sl.occupied = true
	p.occupied++
	return index, sl.generation
}

// freeSlot recycles the slot at index: the generation is incremented
// (wrapping on overflow) before the slot is marked unoccupied, which is what
// makes stale handles detectable. No-op if the slot is already free.
func (p *slotPool) freeSlot(index uint16) {
	sl := &p.slots[index]
	if !sl.occupied {
		return
	}
	sl.generation++
	sl.occupied = false
	sl.task = nil
	sl.group = ""
	p.occupied--
	heap.Push(&p.free, index)
}

// get returns the slot referenced by h, or nil when the handle is stale
// (generation mismatch) or out of range. Callers rely on the nil return to
// make public operations no-ops on invalid handles.
func (p *slotPool) get(h Handle) *slot {
	index := h.index()
	if int(index) >= len(p.slots) {
		return nil
	}
	sl := &p.slots[index]
	if !sl.occupied || sl.generation != h.generation() {
		return nil
	}
	return sl
}
