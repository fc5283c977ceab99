// Package viewstate holds the lifecycle of asynchronously computed views:
// Idle, Loading, Ready and Failed, with stale responses suppressed.
package viewstate

import (
	"errors"
	"sync"
	"time"
)

// ErrStale is returned when a response arrives for a request that has been
// superseded by a newer one. Callers drop it silently.
var ErrStale = errors.New("stale response")

// Status is the lifecycle state of a view.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Ticket identifies one request. Tickets are ordered by issue time.
type Ticket struct {
	seq uint64
}

// State is a read-only copy of a machine's state.
// Value holds the last successful result; it is kept while a newer request is
// Loading and after a Failed one, so a failure never clears a valid view.
type State[T any] struct {
	Status    Status
	Value     T
	HasValue  bool
	Err       error
	UpdatedAt time.Time
}

// Machine is the state of one view. The zero value is not usable; use New.
type Machine[T any] struct {
	mu      sync.Mutex
	clone   func(T) T
	now     func() time.Time
	issued  uint64
	settled uint64
	state   State[T]
}

// New returns an Idle machine. clone, when not nil, is applied to values
// entering and leaving the machine so that callers cannot mutate Ready data.
func New[T any](clone func(T) T) *Machine[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Machine[T]{clone: clone, now: time.Now}
}

// Begin starts a request and moves the machine to Loading.
// Every ticket issued earlier becomes stale.
func (m *Machine[T]) Begin() Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.issued++
	m.state.Status = Loading
	m.state.Err = nil
	m.state.UpdatedAt = m.now()
	return Ticket{seq: m.issued}
}

// Succeed completes the request identified by t with v and moves to Ready.
// It returns ErrStale and changes nothing when t is not the latest ticket or
// has already been settled.
func (m *Machine[T]) Succeed(t Ticket, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(t) {
		return ErrStale
	}
	m.settled = t.seq
	m.state = State[T]{
		Status:    Ready,
		Value:     m.clone(v),
		HasValue:  true,
		UpdatedAt: m.now(),
	}
	return nil
}

// Fail completes the request identified by t with err and moves to Failed,
// keeping the last successful value. It returns ErrStale and changes nothing
// when t is not the latest ticket or has already been settled.
func (m *Machine[T]) Fail(t Ticket, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(t) {
		return ErrStale
	}
	m.settled = t.seq
	m.state.Status = Failed
	m.state.Err = err
	m.state.UpdatedAt = m.now()
	return nil
}

// Abandon settles the request identified by t without a result, for a caller
// that gave up waiting. The machine returns to Ready when it holds a value and
// to Idle otherwise. It returns ErrStale and changes nothing when t is not the
// latest ticket or has already been settled.
func (m *Machine[T]) Abandon(t Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(t) {
		return ErrStale
	}
	m.settled = t.seq
	m.state.Status = Idle
	if m.state.HasValue {
		m.state.Status = Ready
	}
	m.state.Err = nil
	m.state.UpdatedAt = m.now()
	return nil
}

// State returns a copy of the current state.
func (m *Machine[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	if s.HasValue {
		s.Value = m.clone(s.Value)
	}
	return s
}

func (m *Machine[T]) current(t Ticket) bool {
	return t.seq == m.issued && t.seq != m.settled
}

// Registry keeps one Machine per key, typically a username.
type Registry[T any] struct {
	mu       sync.Mutex
	clone    func(T) T
	machines map[string]*Machine[T]
}

// NewRegistry returns an empty registry whose machines use clone.
func NewRegistry[T any](clone func(T) T) *Registry[T] {
	return &Registry[T]{clone: clone, machines: make(map[string]*Machine[T])}
}

// For returns the machine of key, creating an Idle one on first use.
func (r *Registry[T]) For(key string) *Machine[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[key]
	if !ok {
		m = New(r.clone)
		r.machines[key] = m
	}
	return m
}
