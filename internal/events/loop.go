package events

import "sync"

// Loop is a serial executor standing in for a UI-owning thread. Dispatch only
// enqueues; queued callbacks run in order on whoever calls Drain.
type Loop struct {
	mu    sync.Mutex
	queue []func()
}

func NewLoop() *Loop {
	return &Loop{}
}

// Dispatch enqueues fn and never blocks.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs queued callbacks, including ones queued while draining, and
// returns how many ran.
func (l *Loop) Drain() int {
	ran := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return ran
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
			ran++
		}
	}
}
