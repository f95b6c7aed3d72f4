package selector

import "sync"

// Ledger is the set of file names handed out during one batch. The zero
// value is ready to use.
type Ledger struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{names: make(map[string]struct{})}
}

// Reserve records name and reports true, or reports false when the name is
// already taken
func (l *Ledger) Reserve(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.names[name]; taken {
		return false
	}
	if l.names == nil {
		l.names = make(map[string]struct{})
	}
	l.names[name] = struct{}{}
	return true
}

func (l *Ledger) Release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.names, name)
}

func (l *Ledger) Contains(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.names[name]
	return ok
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.names)
}
