package ticksched

import "iter"

// A Task is one resumable timed computation. The scheduler calls it once per
// resumption; the returned [Result] decides what happens next: wait some
// seconds, wait exactly one tick, transit to another Task, end, or fault.
//
// Tasks accept no resumption arguments; state lives in the closure. A panic
// inside a Task is recovered at the per-slot boundary and treated as a fault
// (see [PanicError]).
type Task func() Result

type resultKind uint8

const (
	kindEnd resultKind = iota
	kindWait
	kindNextTick
	kindTransit
	kindFault
)

// Result is the outcome of a single Task resumption. Construct it with
// [Wait], [WaitForNextTick], [Continue], [Transit], [End], or [Fail];
// the zero Result is equivalent to End().
type Result struct {
	next Task
	err  error
	wait float64
	kind resultKind
}

// Wait returns a Result requesting resumption once the given number of
// seconds of the segment's local time has elapsed. NaN and negative values
// are treated as zero (resume on the segment's next tick).
func Wait(seconds float64) Result {
	return Result{kind: kindWait, wait: seconds}
}

// Continue returns a Result requesting resumption at the segment's next
// opportunity (a zero wait).
func Continue() Result {
	return Result{kind: kindWait}
}

// WaitForNextTick returns the one-frame sentinel: the coroutine resumes on
// the segment's next process pass and not before, regardless of the delta
// time magnitude. It is a distinct sentinel rather than a numeric wait, so
// no float comparison is involved.
func WaitForNextTick() Result {
	return Result{kind: kindNextTick}
}

// Transit returns a Result that immediately continues with next, within the
// same resumption.
func Transit(next Task) Result {
	if next == nil {
		panic("ticksched: undefined behavior: Transit(nil)")
	}
	return Result{kind: kindTransit, next: next}
}

// End returns a Result that terminates the coroutine normally, freeing its
// slot.
func End() Result {
	return Result{kind: kindEnd}
}

// Fail returns a Result that terminates the coroutine with a fault. The
// fault is delivered to the scheduler's [FaultReporter] and the slot is
// freed. A nil err is normalized to [ErrTaskFailed].
func Fail(err error) Result {
	if err == nil {
		err = ErrTaskFailed
	}
	return Result{kind: kindFault, err: err}
}

// Then attaches a continuation to a waiting Result: once the wait elapses,
// the scheduler resumes next instead of the current Task. It has no effect
// on End, Fail, or Transit results.
func (r Result) Then(next Task) Result {
	if next == nil {
		panic("ticksched: undefined behavior: Result.Then(nil)")
	}
	if r.kind == kindWait || r.kind == kindNextTick {
		r.next = next
	}
	return r
}

// Do returns a Task that calls f once and then ends.
func Do(f func()) Task {
	return func() Result {
		f()
		return End()
	}
}

// Then returns a Task that runs t to completion, then runs next. A fault in
// t ends the chain.
func (t Task) Then(next Task) Task {
	if next == nil {
		panic("ticksched: undefined behavior: Task.Then(nil)")
	}
	return Chain(t, next)
}

// Chain returns a Task that works through each of the provided Tasks in
// sequence. When one ends, the next begins within the same resumption; a
// fault in any of them ends the chain.
func Chain(s ...Task) Task {
	var t Task
	return func() Result {
		for {
			if t == nil {
				if len(s) == 0 {
					return End()
				}
				t, s = s[0], s[1:]
			}
			res := t()
			switch res.kind {
			case kindEnd:
				t = nil
			case kindTransit:
				t = res.next
			case kindFault:
				return res
			default:
				if res.next != nil {
					t = res.next
					res.next = nil
				}
				return res
			}
		}
	}
}

// FromSeq adapts a range-over-func sequence of wait durations (seconds) into
// a Task. Each yielded value behaves like [Wait]; the Task ends when the
// sequence returns.
//
// The pull iterator is created lazily on the first resumption. If the
// coroutine is killed, the suspended iterator is abandoned rather than
// stopped: deferred functions inside the sequence do not run (matching the
// non-cooperative kill contract) and the iterator is reclaimed by the
// garbage collector. A panic inside the sequence surfaces as a fault.
func FromSeq(seq iter.Seq[float64]) Task {
	if seq == nil {
		panic("ticksched: undefined behavior: FromSeq(nil)")
	}
	var next func() (float64, bool)
	return func() Result {
		if next == nil {
			next, _ = iter.Pull(seq)
		}
		w, ok := next()
		if !ok {
			return End()
		}
		return Wait(w)
	}
}
