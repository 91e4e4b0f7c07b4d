package saving

// Reduce applies one event. It is total: every event is accepted in every state,
// possibly as a no-op.
func Reduce(m Machine, e Event) Machine {
	if m.Process == nil {
		m.Process = Idle{}
	}

	switch ev := e.(type) {
	case SaveRequested:
		if _, active := m.Active(); active && !ev.Force {
			// the active cycle will capture the latest edits
			return m
		}
		m.Generation++
		m.Process = PreparingContent{Generation: m.Generation}
		return m

	case ContentPrepared:
		p, ok := m.Process.(PreparingContent)
		if !ok || p.Generation != ev.Generation {
			return m
		}
		if ev.Content == nil {
			m.Process = Idle{}
			return m
		}
		m.Process = PostingContent{Generation: p.Generation, Content: ev.Content}
		return m

	case PreparingFailed:
		if p, ok := m.Process.(PreparingContent); ok && p.Generation == ev.Generation {
			m.Process = Idle{}
		}
		return m

	case ContentPersisted:
		if p, ok := m.Process.(PostingContent); ok && p.Generation == ev.Generation {
			m.Process = Idle{}
		}
		return m

	case PersistingFailed:
		if p, ok := m.Process.(PostingContent); ok && p.Generation == ev.Generation {
			m.Process = Idle{}
		}
		return m
	}

	return m
}

// Stale reports whether e is a completion from a cycle other than the active one.
func Stale(m Machine, e Event) bool {
	c, ok := e.(Completion)
	if !ok {
		return false
	}
	g, active := m.Active()
	return !active || g != c.CycleGeneration()
}
