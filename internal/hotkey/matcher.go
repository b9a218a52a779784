package hotkey

import "sync"

// Matcher tracks which keys of one combination are held and fires when the
// whole combination is down.
type Matcher struct {
	mu    sync.Mutex
	keys  map[string]bool
	state map[string]bool
	fn    func()
}

// NewMatcher returns a matcher for canonical key names.
func NewMatcher(keys []string, fn func()) *Matcher {
	m := &Matcher{
		keys:  make(map[string]bool, len(keys)),
		state: make(map[string]bool, len(keys)),
		fn:    fn,
	}
	for _, k := range keys {
		m.keys[k] = true
	}
	return m
}

// Press records a key-down. Auto-repeat of a key already held is ignored.
func (m *Matcher) Press(key string) {
	m.mu.Lock()
	if !m.keys[key] || m.state[key] {
		m.mu.Unlock()
		return
	}
	m.state[key] = true
	complete := len(m.state) == len(m.keys)
	m.mu.Unlock()
	if complete {
		m.fn()
	}
}

// Release records a key-up.
func (m *Matcher) Release(key string) {
	m.mu.Lock()
	delete(m.state, key)
	m.mu.Unlock()
}
