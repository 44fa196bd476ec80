package ticksched

import "math"

// DefaultGroup is the group tag assigned by [Scheduler.Run].
const DefaultGroup = "default"

// Scheduler is a deterministic cooperative scheduler for timed coroutines.
// Construct it with [New]; the host frame loop drives it by calling
// [Scheduler.Update], [Scheduler.LateUpdate], and [Scheduler.FixedUpdate]
// once per its own tick of the corresponding phase.
//
// The scheduler never schedules itself and provides no internal locking:
// all methods must be called from the single goroutine driving the ticks.
type Scheduler struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	segments [segmentCount]segmentState
	groups   groupIndex

	logger       *logifaceLogger
	reporter     FaultReporter
	faultLimiter faultLogLimiter
	metrics      *metricsState

	lazyBatchCap int
}

// New creates a Scheduler. Option errors (e.g. a non-positive lazy batch
// cap) are returned rather than deferred.
func New(options ...SchedulerOption) (*Scheduler, error) {
	cfg, err := resolveSchedulerOptions(options)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		groups:       make(groupIndex),
		logger:       cfg.logger,
		reporter:     cfg.reporter,
		lazyBatchCap: cfg.lazyBatchCap,
	}
	if cfg.metricsEnabled {
		s.metrics = &metricsState{}
	}
	if s.reporter == nil {
		s.faultLimiter = newFaultLogLimiter()
		s.reporter = s.defaultFaultReporter
	}
	if cfg.initialCapacity > 0 {
		for i := range s.segments {
			s.segments[i].pool.slots = make([]slot, 0, cfg.initialCapacity)
		}
	}
	return s, nil
}

// Run starts task on the given segment in [DefaultGroup] and returns its
// handle. See [Scheduler.RunInGroup].
func (s *Scheduler) Run(segment Segment, task Task) Handle {
	return s.RunInGroup(segment, DefaultGroup, task)
}

// RunInGroup starts task on the given segment, tagged with group, and
// returns its handle. The coroutine's first step runs inside the call
// itself, at the segment's current local time; it first waits only if that
// step requests one. If the first step ends or faults the coroutine, the
// returned handle is already inactive.
func (s *Scheduler) RunInGroup(segment Segment, group string, task Task) Handle {
	if task == nil {
		panic("ticksched: run: nil task")
	}
	if !segment.valid() {
		panic("ticksched: run: invalid segment")
	}

	st := &s.segments[segment]
	index, generation := st.pool.allocate(task, group)
	sl := &st.pool.slots[index]
	sl.waitUntil = st.localTime
	sl.readyTick = 0

	h := newHandle(segment, index, generation)
	s.groups.add(group, h)
	if m := s.metrics; m != nil {
		m.started.Add(1)
	}

	s.resumeSlot(segment, st, index)

	// A coroutine started mid-pass must not be resumed again by the pass
	// that is currently running (it may have reused a lower index than the
	// pass's position).
	if sl := st.pool.get(h); sl != nil && sl.readyTick <= st.tick {
		sl.readyTick = st.tick + 1
	}
	return h
}

// Pause suspends the coroutine: processing skips its slot entirely
// regardless of due time. The scheduled wait deadline is left unchanged, so
// a wait that elapses while paused makes the coroutine due immediately on
// resume. No-op on an invalid or stale handle.
func (s *Scheduler) Pause(handle Handle) {
	sl := s.lookup(handle)
	if sl == nil {
		s.logStaleHandle("pause", handle)
		return
	}
	sl.paused = true
}

// Resume clears the paused flag set by [Scheduler.Pause]. No-op on an
// invalid or stale handle.
func (s *Scheduler) Resume(handle Handle) {
	sl := s.lookup(handle)
	if sl == nil {
		s.logStaleHandle("resume", handle)
		return
	}
	sl.paused = false
}

// Kill frees the coroutine's slot without resuming it: no cleanup code
// inside the computation runs. No-op on an invalid or stale handle.
func (s *Scheduler) Kill(handle Handle) {
	sl := s.lookup(handle)
	if sl == nil {
		s.logStaleHandle("kill", handle)
		return
	}
	st := &s.segments[handle.Segment()]
	group := sl.group
	st.pool.freeSlot(handle.index())
	s.groups.remove(group, handle)
	if m := s.metrics; m != nil {
		m.killed.Add(1)
	}
}

// KillAll kills every coroutine in every segment.
func (s *Scheduler) KillAll() {
	for segment := Segment(0); segment < segmentCount; segment++ {
		s.KillSegment(segment)
	}
}

// KillSegment kills every coroutine in the given segment.
func (s *Scheduler) KillSegment(segment Segment) {
	if !segment.valid() {
		panic("ticksched: kill: invalid segment")
	}
	st := &s.segments[segment]
	killed := 0
	for i := range st.pool.slots {
		sl := &st.pool.slots[i]
		if !sl.occupied {
			continue
		}
		h := newHandle(segment, uint16(i), sl.generation)
		group := sl.group
		st.pool.freeSlot(uint16(i))
		s.groups.remove(group, h)
		killed++
	}
	if m := s.metrics; m != nil {
		m.killed.Add(uint64(killed))
	}
	if killed > 0 {
		s.logger.Debug().
			Stringer("segment", segment).
			Int("killed", killed).
			Log("killed segment coroutines")
	}
}

// KillGroup kills every coroutine tagged with group, across all segments,
// and no others.
func (s *Scheduler) KillGroup(group string) {
	set := s.groups.drain(group)
	killed := 0
	for h := range set {
		st := &s.segments[h.Segment()]
		if st.pool.get(h) == nil {
			continue
		}
		st.pool.freeSlot(h.index())
		killed++
	}
	if m := s.metrics; m != nil {
		m.killed.Add(uint64(killed))
	}
	if killed > 0 {
		s.logger.Debug().
			Str("group", group).
			Int("killed", killed).
			Log("killed group coroutines")
	}
}

// IsActive reports whether the handle refers to a live coroutine, paused or
// not. O(1), generation checked.
func (s *Scheduler) IsActive(handle Handle) bool {
	return s.lookup(handle) != nil
}

// DeltaTime returns the delta time supplied to the segment's most recent
// tick. SegmentLazy shares the Update clock.
func (s *Scheduler) DeltaTime(segment Segment) float64 {
	if !segment.valid() {
		panic("ticksched: invalid segment")
	}
	return s.segments[segment].delta
}

// LocalTime returns the segment's accumulated elapsed time in seconds.
// SegmentFixed accumulates FixedUpdate ticks only.
func (s *Scheduler) LocalTime(segment Segment) float64 {
	if !segment.valid() {
		panic("ticksched: invalid segment")
	}
	return s.segments[segment].localTime
}

// Update advances the primary variable-delta segment by deltaTime and then
// runs one lazy lane batch on the same clock. Call exactly once per host
// variable-delta tick, with a non-negative delta (negative values are
// clamped to zero and logged).
func (s *Scheduler) Update(deltaTime float64) {
	dt := s.clampDelta(SegmentUpdate, deltaTime)
	s.processSegment(SegmentUpdate, dt)

	lz := &s.segments[SegmentLazy]
	lz.delta = dt
	lz.localTime += dt
	s.processLazy(lz, s.lazyBatchCap)
}

// LateUpdate advances the secondary variable-delta segment by deltaTime.
func (s *Scheduler) LateUpdate(deltaTime float64) {
	s.processSegment(SegmentLate, s.clampDelta(SegmentLate, deltaTime))
}

// FixedUpdate advances the fixed-delta segment by deltaTime. It also marks,
// for each variable-delta segment, that a fixed step has occurred since that
// segment's last tick (see [Scheduler.UntilFixedStep]).
func (s *Scheduler) FixedUpdate(deltaTime float64) {
	s.segments[SegmentUpdate].fixedStepSince = true
	s.segments[SegmentLate].fixedStepSince = true
	s.processSegment(SegmentFixed, s.clampDelta(SegmentFixed, deltaTime))
}

// UntilFixedStep returns a Task that completes, continuing with next, only
// once a FixedUpdate tick has occurred since the last tick of the given
// variable-delta segment; until then it yields the one-frame sentinel.
// Use it from coroutines running on that segment to align work with the
// fixed-delta phase. A nil next ends the coroutine once the condition holds.
func (s *Scheduler) UntilFixedStep(segment Segment, next Task) Task {
	if segment != SegmentUpdate && segment != SegmentLate {
		panic("ticksched: UntilFixedStep: segment must be a variable-delta segment")
	}
	return func() Result {
		if s.segments[segment].fixedStepSince {
			if next == nil {
				return End()
			}
			return Transit(next)
		}
		return WaitForNextTick()
	}
}

// lookup resolves a handle to its slot, or nil when invalid or stale.
func (s *Scheduler) lookup(h Handle) *slot {
	if !h.tagged() {
		return nil
	}
	segment := h.Segment()
	if !segment.valid() {
		return nil
	}
	return s.segments[segment].pool.get(h)
}

func (s *Scheduler) clampDelta(segment Segment, dt float64) float64 {
	if dt >= 0 {
		return dt
	}
	s.logNegativeDelta(segment, dt)
	return 0
}

// processSegment is one tick of a live-driven segment: advance local time,
// then resume every occupied, unpaused, due slot in pool index order.
// Iteration order is storage order, not insertion order; after slot reuse a
// newer coroutine may be visited before an older one.
func (s *Scheduler) processSegment(segment Segment, dt float64) {
	st := &s.segments[segment]
	st.delta = dt
	st.localTime += dt
	st.tick++

	// Slots started during this pass land beyond n or are deferred via
	// readyTick; either way they first run next tick.
	n := len(st.pool.slots)
	for i := 0; i < n; i++ {
		sl := &st.pool.slots[i]
		if !sl.occupied || sl.paused {
			continue
		}
		if sl.waitUntil > st.localTime || sl.readyTick > st.tick {
			continue
		}
		s.resumeSlot(segment, st, uint16(i))
	}

	if segment == SegmentUpdate || segment == SegmentLate {
		st.fixedStepSince = false
	}
}

// resumeSlot resumes the coroutine in the given slot and applies its
// Result. The slot pointer is re-fetched after every step: the task may
// have started coroutines (growing the pool and relocating its backing
// array) or killed slots, including its own.
func (s *Scheduler) resumeSlot(segment Segment, st *segmentState, index uint16) {
	generation := st.pool.slots[index].generation
	task := st.pool.slots[index].task

	for {
		res := safeResume(task)
		if m := s.metrics; m != nil {
			m.resumed.Add(1)
		}

		sl := &st.pool.slots[index]
		if !sl.occupied || sl.generation != generation {
			// Killed itself (or killed and already replaced) mid-step;
			// the result belongs to a dead coroutine.
			return
		}

		switch res.kind {
		case kindTransit:
			task = res.next
			sl.task = task

		case kindEnd:
			group := sl.group
			h := newHandle(segment, index, generation)
			st.pool.freeSlot(index)
			s.groups.remove(group, h)
			if m := s.metrics; m != nil {
				m.completed.Add(1)
			}
			return

		case kindFault:
			group := sl.group
			h := newHandle(segment, index, generation)
			st.pool.freeSlot(index)
			s.groups.remove(group, h)
			if m := s.metrics; m != nil {
				m.faulted.Add(1)
			}
			s.reporter(FaultReport{
				Err:     res.err,
				Group:   group,
				Handle:  h,
				Segment: segment,
			})
			return

		case kindNextTick:
			if res.next != nil {
				sl.task = res.next
			}
			sl.waitUntil = st.localTime
			sl.readyTick = st.tick + 1
			return

		default: // kindWait
			w := res.wait
			if math.IsNaN(w) || w < 0 {
				w = 0
			}
			if res.next != nil {
				sl.task = res.next
			}
			sl.waitUntil = st.localTime + w
			sl.readyTick = 0
			return
		}
	}
}

// safeResume executes one step with panic recovery; a recovered panic
// becomes a fault outcome, so one failing coroutine can never abort the
// segment's processing of the remaining slots.
func safeResume(task Task) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{kind: kindFault, err: PanicError{Value: r}}
		}
	}()
	return task()
}
