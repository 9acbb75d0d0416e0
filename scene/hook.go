package scene

type hook struct {
	fn     func()
	active bool
}

// hookList keeps registration order; removal during fire is allowed
type hookList struct {
	hooks []*hook
}

func (l *hookList) add(fn func()) func() {
	h := &hook{fn: fn, active: true}
	l.hooks = append(l.hooks, h)
	return func() {
		if !h.active {
			return
		}
		h.active = false
		for i, x := range l.hooks {
			if x == h {
				l.hooks = append(l.hooks[:i], l.hooks[i+1:]...)
				break
			}
		}
	}
}

func (l *hookList) fire() {
	snapshot := make([]*hook, len(l.hooks))
	copy(snapshot, l.hooks)
	for _, h := range snapshot {
		// Skip hooks cancelled by an earlier hook in this pass
		if h.active {
			h.fn()
		}
	}
}

func (l *hookList) clear() {
	for _, h := range l.hooks {
		h.active = false
	}
	l.hooks = nil
}

func (l *hookList) count() int {
	return len(l.hooks)
}
