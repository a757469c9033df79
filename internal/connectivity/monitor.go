// Package connectivity tracks network reachability for the sync subsystem.
//
// The Monitor holds the current online/offline belief and notifies
// subscribers on transitions. The reading is advisory: a false "online" is
// possible, so dispatch failures remain the authoritative signal of
// unreachability. The Prober feeds the monitor by polling an HTTP endpoint.
package connectivity

import "sync"

//go:generate mockgen -source=monitor.go -destination=../mock/connectivity_mock.go -package=mock

// Monitor exposes the reachability state and transition events.
type Monitor interface {
	// IsOnline returns the current belief about reachability.
	IsOnline() bool

	// SetOnline records a new reading. A transition notifies every
	// subscriber exactly once; repeated readings of the same state are
	// silent.
	SetOnline(online bool)

	// Subscribe registers fn to be called on every transition with the new
	// state. The returned function removes the subscription.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

type monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(bool)
}

// NewMonitor creates a Monitor with the given initial belief. Clients start
// optimistic (online) so the first sync attempt is not suppressed before the
// prober has run.
func NewMonitor(initialOnline bool) Monitor {
	return &monitor{
		online: initialOnline,
		subs:   make(map[int]func(bool)),
	}
}

func (m *monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	// Subscribers run outside the lock so they may call back into the
	// monitor without deadlocking.
	for _, fn := range fns {
		fn(online)
	}
}

func (m *monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}
