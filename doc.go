// Package ticksched provides a deterministic, allocation-free cooperative
// scheduler for time-driven resumable computations ("timed coroutines"),
// driven once per tick by a host frame loop.
//
// # Architecture
//
// A [Scheduler] owns four independent execution segments, each with its own
// slot pool and local-time accumulator:
//
//   - [SegmentUpdate] and [SegmentLate]: variable-delta phases, advanced by
//     [Scheduler.Update] and [Scheduler.LateUpdate].
//   - [SegmentFixed]: a fixed-delta phase with its own accumulator, advanced
//     by [Scheduler.FixedUpdate].
//   - [SegmentLazy]: a deferred lane sharing the Update clock, which
//     processes at most a configurable number of slots per Update tick
//     (see [WithLazyBatchCap]) and resumes its scan where it left off,
//     amortizing large backlogs across many ticks.
//
// Coroutines are [Task] step functions. Each resumption returns a [Result]
// built from [Wait], [WaitForNextTick], [Continue], [Transit], [End], or
// [Fail]; combinators ([Task.Then], [Chain], [Do], [FromSeq]) compose larger
// computations from smaller steps.
//
// Identity is handle based: [Scheduler.Run] returns a [Handle] packing the
// slot index and a per-slot generation counter. Freed slots are recycled with
// their generation incremented, so a stale handle held across a kill and
// reuse cycle is detectable and never aliases the newer occupant. All
// handle-taking operations are no-ops on stale or invalid handles.
//
// # Processing Model
//
// Each segment tick advances the segment's local time and resumes every
// occupied, non-paused slot whose wait has elapsed, in pool index order.
// After slot reuse a newly started coroutine may occupy a lower index than
// older ones, so iteration order is not FIFO; this is intentional.
//
// The first step of a coroutine runs inside [Scheduler.Run] itself, at the
// segment's current local time. Subsequent resumptions happen during ticks.
//
// A fault (a [Fail] result, or a panic recovered at the per-slot boundary)
// frees the slot and is delivered to the configured [FaultReporter]; it never
// propagates to the host tick, and never affects processing of other slots.
//
// # Thread Safety
//
// The scheduler is single-threaded and cooperative by design. All state is
// owned by the goroutine driving the ticks; calling any method from another
// goroutine without external synchronization is undefined. No method blocks:
// a wait is a scheduling deferral, never an OS sleep.
//
// # Usage
//
//	sched, err := ticksched.New(
//	    ticksched.WithLazyBatchCap(100),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h := sched.Run(ticksched.SegmentUpdate, func() ticksched.Result {
//	    fmt.Println("started")
//	    return ticksched.Wait(0.5).Then(ticksched.Do(func() {
//	        fmt.Println("half a second of game time later")
//	    }))
//	})
//
//	for running() {
//	    sched.Update(frameDelta())
//	    sched.LateUpdate(frameDelta())
//	    for fixedStepDue() {
//	        sched.FixedUpdate(fixedDelta())
//	    }
//	    _ = h
//	}
package ticksched
