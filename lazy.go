package ticksched

// processLazy is one batch of the deferred lane. It advances through at
// most limit occupied slots starting from the persistent cursor, applying
// the same due-time/resume/fault/free logic as a live segment tick, then
// leaves the cursor at the next position (wrapping to 0 at the pool end).
//
// Budget accounting: every occupied slot visited consumes one unit of the
// budget whether or not it is due; that is the deliberate backpressure
// bounding per-tick cost for very large backlogs. Unoccupied indexes are
// skipped for free, so N occupied slots are all visited within
// ceil(N/limit) consecutive batches absent new insertions.
//
// Visitation is by stable pool index: the cursor only moves forward within
// a batch, and a batch scans each index at most once, so a slot freed
// mid-scan is never double-visited and no slot resumes twice in one call.
func (s *Scheduler) processLazy(st *segmentState, limit int) {
	st.tick++

	n := len(st.pool.slots)
	if n == 0 {
		return
	}
	if st.cursor >= n {
		st.cursor = 0
	}

	budget := limit
	for scanned := 0; scanned < n && budget > 0; scanned++ {
		index := st.cursor
		st.cursor++
		if st.cursor >= n {
			st.cursor = 0
		}

		sl := &st.pool.slots[index]
		if !sl.occupied {
			continue
		}
		budget--
		if sl.paused {
			continue
		}
		if sl.waitUntil > st.localTime || sl.readyTick > st.tick {
			continue
		}
		s.resumeSlot(SegmentLazy, st, uint16(index))
	}
}
