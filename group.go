package ticksched

// groupIndex maps a group tag to the set of handles sharing it, enabling
// bulk kill without scanning every pool. It is a derived cache: the slots'
// group fields are the sole source of truth, and the index is rebuildable
// from them.
type groupIndex map[string]map[Handle]struct{}

func (g groupIndex) add(group string, h Handle) {
	set := g[group]
	if set == nil {
		set = make(map[Handle]struct{})
		g[group] = set
	}
	set[h] = struct{}{}
}

func (g groupIndex) remove(group string, h Handle) {
	set := g[group]
	if set == nil {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(g, group)
	}
}

// drain removes and returns the whole handle set for group, which may be
// nil when the group has no live handles.
func (g groupIndex) drain(group string) map[Handle]struct{} {
	set := g[group]
	delete(g, group)
	return set
}
