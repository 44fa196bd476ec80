package ticksched

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultConstructors(t *testing.T) {
	assert.Equal(t, kindWait, Wait(0.5).kind)
	assert.Equal(t, 0.5, Wait(0.5).wait)
	assert.Equal(t, kindWait, Continue().kind)
	assert.Equal(t, float64(0), Continue().wait)
	assert.Equal(t, kindNextTick, WaitForNextTick().kind)
	assert.Equal(t, kindEnd, End().kind)

	err := errors.New("boom")
	assert.Equal(t, kindFault, Fail(err).kind)
	assert.Same(t, err, Fail(err).err)
	assert.ErrorIs(t, Fail(nil).err, ErrTaskFailed)

	var zero Result
	assert.Equal(t, kindEnd, zero.kind, "zero Result behaves as End")
}

func TestResultThen(t *testing.T) {
	next := Task(func() Result { return End() })
	assert.NotNil(t, Wait(1).Then(next).next)
	assert.NotNil(t, WaitForNextTick().Then(next).next)
	assert.Nil(t, End().Then(next).next, "Then has no effect on End")
	assert.Nil(t, Fail(errors.New("x")).Then(next).next, "Then has no effect on Fail")
	assert.Panics(t, func() { Wait(1).Then(nil) })
}

func TestTransitPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { Transit(nil) })
	assert.Panics(t, func() { Task(noopTask).Then(nil) })
	assert.Panics(t, func() { FromSeq(nil) })
}

func TestDo(t *testing.T) {
	called := false
	res := Do(func() { called = true })()
	assert.True(t, called)
	assert.Equal(t, kindEnd, res.kind)
}

func TestChainRunsTasksInSequence(t *testing.T) {
	var log []string
	step := func(name string, waits int) Task {
		return func() Result {
			log = append(log, name)
			if waits > 0 {
				waits--
				return WaitForNextTick()
			}
			return End()
		}
	}
	chain := Chain(step("a", 1), step("b", 0), step("c", 1))

	// a yields once.
	res := chain()
	require.Equal(t, kindNextTick, res.kind)
	require.Equal(t, []string{"a"}, log)

	// a ends; b ends within the same resumption; c yields.
	res = chain()
	require.Equal(t, kindNextTick, res.kind)
	require.Equal(t, []string{"a", "a", "b", "c"}, log)

	// c ends; chain ends.
	res = chain()
	require.Equal(t, kindEnd, res.kind)
	require.Equal(t, []string{"a", "a", "b", "c", "c"}, log)
}

func TestChainPropagatesFault(t *testing.T) {
	err := errors.New("boom")
	ran := false
	chain := Chain(
		func() Result { return Fail(err) },
		func() Result { ran = true; return End() },
	)
	res := chain()
	assert.Equal(t, kindFault, res.kind)
	assert.Same(t, err, res.err)
	assert.False(t, ran, "fault must end the chain")
}

func TestChainFollowsTransitsAndContinuations(t *testing.T) {
	var log []string
	tail := func() Result {
		log = append(log, "tail")
		return End()
	}
	chain := Chain(
		func() Result {
			log = append(log, "head")
			return Transit(tail)
		},
		func() Result {
			log = append(log, "waiter")
			return Wait(0).Then(tail)
		},
	)

	res := chain()
	require.Equal(t, kindWait, res.kind)
	require.Nil(t, res.next, "chain must keep itself as the scheduled task")
	require.Equal(t, []string{"head", "tail", "waiter"}, log)

	res = chain()
	require.Equal(t, kindEnd, res.kind)
	require.Equal(t, []string{"head", "tail", "waiter", "tail"}, log)
}

func TestTaskThen(t *testing.T) {
	var log []string
	first := Task(func() Result {
		log = append(log, "first")
		return End()
	})
	second := Task(func() Result {
		log = append(log, "second")
		return End()
	})
	res := first.Then(second)()
	assert.Equal(t, kindEnd, res.kind)
	assert.Equal(t, []string{"first", "second"}, log)
}

func TestFromSeq(t *testing.T) {
	task := FromSeq(func(yield func(float64) bool) {
		if !yield(0.25) {
			return
		}
		yield(0.75)
	})

	res := task()
	require.Equal(t, kindWait, res.kind)
	require.Equal(t, 0.25, res.wait)

	res = task()
	require.Equal(t, kindWait, res.kind)
	require.Equal(t, 0.75, res.wait)

	res = task()
	require.Equal(t, kindEnd, res.kind)
}

func TestFromSeqPanicBecomesFault(t *testing.T) {
	var report FaultReport
	s, err := New(WithFaultReporter(func(r FaultReport) { report = r }))
	require.NoError(t, err)

	h := s.Run(SegmentUpdate, FromSeq(func(yield func(float64) bool) {
		panic("seq boom")
	}))
	assert.False(t, s.IsActive(h))
	var panicErr PanicError
	require.ErrorAs(t, report.Err, &panicErr)
	assert.Equal(t, "seq boom", panicErr.Value)
}

func TestPanicErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, error(PanicError{Value: cause}), cause)
	assert.Nil(t, PanicError{Value: "not an error"}.Unwrap())
	assert.Contains(t, PanicError{Value: "x"}.Error(), "panicked")
}

func TestWaitNaNIsNormalizedByScheduler(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	resumes := 0
	s.Run(SegmentUpdate, func() Result {
		resumes++
		if resumes == 1 {
			return Wait(math.NaN())
		}
		return End()
	})
	require.Equal(t, 1, resumes)

	// NaN normalizes to zero: due on the very next tick.
	s.Update(0)
	assert.Equal(t, 2, resumes)
}
