package session

import (
	"context"
	"sync"

	"github.com/coachfolio/portfolio"
)

// Memory is an in-process Store. Sessions live until deleted or until the
// process exits.
type Memory struct {
	mu      sync.RWMutex // guards entries
	entries map[string]*entry
}

type entry struct {
	mu     sync.RWMutex // guards ledger
	ledger *portfolio.Ledger
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

func (m *Memory) Create(_ context.Context, l *portfolio.Ledger) (string, error) {
	id := newID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = &entry{ledger: l.Clone()}
	return id, nil
}

func (m *Memory) entry(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *Memory) Load(_ context.Context, id string) (*portfolio.Ledger, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Clone(), nil
}

func (m *Memory) Update(_ context.Context, id string, fn func(*portfolio.Ledger) error) (*portfolio.Ledger, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	l := e.ledger.Clone()
	if err := fn(l); err != nil {
		return nil, err
	}
	e.ledger = l
	return l.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// Len returns the number of sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
