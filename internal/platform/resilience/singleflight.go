package resilience

import "sync"

// SingleFlight collapses concurrent loads of the same key into one call.
// Followers block until the leader finishes and share its result; the shared
// flag reports which role the caller played.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	done chan struct{}
	val  any
	err  error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flight)
	}
	if leader, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-leader.done
		return leader.val, leader.err, true
	}

	f := &flight{done: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return f.val, f.err, false
}
