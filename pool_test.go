package ticksched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTask() Result { return End() }

func TestPoolAllocateGrowsThenReuses(t *testing.T) {
	var p slotPool

	i0, g0 := p.allocate(noopTask, "a")
	i1, _ := p.allocate(noopTask, "a")
	i2, _ := p.allocate(noopTask, "a")
	require.Equal(t, uint16(0), i0)
	require.Equal(t, uint16(1), i1)
	require.Equal(t, uint16(2), i2)
	require.Equal(t, uint32(0), g0)
	require.Equal(t, 3, p.occupied)

	p.freeSlot(i2)
	p.freeSlot(i0)
	require.Equal(t, 1, p.occupied)

	// Lowest free index first, avoiding unbounded growth under churn.
	r0, rg0 := p.allocate(noopTask, "b")
	assert.Equal(t, uint16(0), r0)
	assert.Equal(t, uint32(1), rg0, "generation bumps on recycle")
	r2, _ := p.allocate(noopTask, "b")
	assert.Equal(t, uint16(2), r2)
	r3, _ := p.allocate(noopTask, "b")
	assert.Equal(t, uint16(3), r3, "no free slots left, pool grows")
	assert.Len(t, p.slots, 4)
}

func TestPoolGetStaleAndOutOfRange(t *testing.T) {
	var p slotPool

	index, generation := p.allocate(noopTask, "a")
	h := newHandle(SegmentUpdate, index, generation)
	require.NotNil(t, p.get(h))

	p.freeSlot(index)
	assert.Nil(t, p.get(h), "freed slot must not resolve")

	// Reuse: the old handle must not alias the new occupant.
	index2, generation2 := p.allocate(noopTask, "a")
	require.Equal(t, index, index2)
	h2 := newHandle(SegmentUpdate, index2, generation2)
	assert.Nil(t, p.get(h))
	assert.NotNil(t, p.get(h2))

	assert.Nil(t, p.get(newHandle(SegmentUpdate, 999, 0)), "out of range index")
}

func TestPoolDoubleFreeIsNoop(t *testing.T) {
	var p slotPool
	index, _ := p.allocate(noopTask, "a")
	p.freeSlot(index)
	gen := p.slots[index].generation
	p.freeSlot(index)
	assert.Equal(t, gen, p.slots[index].generation, "double free must not bump generation")
	assert.Equal(t, 0, p.occupied)
	assert.Len(t, p.free, 1, "double free must not duplicate the free index")
}

func TestPoolGenerationWraps(t *testing.T) {
	var p slotPool
	index, _ := p.allocate(noopTask, "a")
	p.slots[index].generation = 4294967295
	p.freeSlot(index)
	assert.Equal(t, uint32(0), p.slots[index].generation)
}
