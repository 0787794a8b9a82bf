package registry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Sizer is implemented by payloads that can report an estimate of the memory
// they pin. The estimate is charged against the registry budget.
type Sizer interface {
	SizeBytes() int64
}

// Releaser is implemented by payloads that hold sensitive buffers. Release is
// called exactly once, after the entry has been marked reclaimed.
type Releaser interface {
	Release()
}

// Observer receives lifecycle notifications. Callbacks run synchronously on
// the allocating or reclaiming goroutine and must not call back into the
// registry.
type Observer interface {
	Allocated(h Handle, size int64)
	Reclaimed(h Handle)
}

// Stats is a point-in-time snapshot of registry occupancy.
type Stats struct {
	Live      int
	Allocated uint64
	Reclaimed uint64
	LiveBytes int64
	Budget    int64
}

type entry struct {
	mu        sync.RWMutex
	handle    Handle
	payload   any
	size      int64
	reclaimed bool
}

// Registry is a concurrency-safe handle table.
type Registry struct {
	serial uint64

	mu      sync.RWMutex
	entries map[uint64]*entry

	next      atomic.Uint64
	liveBytes atomic.Int64
	allocated atomic.Uint64
	reclaimed atomic.Uint64

	budget   int64
	observer Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithBudget caps the total estimated size of live payloads. Zero or a
// negative value disables the cap.
func WithBudget(bytes int64) Option {
	return func(r *Registry) {
		if bytes < 0 {
			bytes = 0
		}
		r.budget = bytes
	}
}

// WithObserver installs a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{serial: serials.Add(1), entries: make(map[uint64]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultRegistry atomic.Pointer[Registry]
	serials         atomic.Uint64
)

func init() {
	defaultRegistry.Store(New())
}

// Default returns the process-wide registry used by the typed wrappers.
func Default() *Registry {
	return defaultRegistry.Load()
}

// SetDefault replaces the process-wide registry and returns the previous one.
// Handles issued by the previous registry stay valid there; wrappers remember
// the registry that allocated them.
func SetDefault(r *Registry) *Registry {
	if r == nil {
		r = New()
	}
	return defaultRegistry.Swap(r)
}

// Allocate takes ownership of payload and returns a fresh handle for it.
func (r *Registry) Allocate(kind Kind, curve uint32, payload any) (Handle, error) {
	if payload == nil {
		return Handle{}, ErrNilPayload
	}
	var size int64
	if s, ok := payload.(Sizer); ok {
		size = s.SizeBytes()
	}
	if err := r.charge(size); err != nil {
		return Handle{}, err
	}

	h := Handle{id: r.next.Add(1), kind: kind, curve: curve}
	e := &entry{handle: h, payload: payload, size: size}

	r.mu.Lock()
	r.entries[h.id] = e
	r.mu.Unlock()

	r.allocated.Add(1)
	if r.observer != nil {
		r.observer.Allocated(h, size)
	}
	return h, nil
}

func (r *Registry) charge(size int64) error {
	if size <= 0 {
		return nil
	}
	for {
		cur := r.liveBytes.Load()
		if r.budget > 0 && cur+size > r.budget {
			return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrOutOfMemory, size, cur, r.budget)
		}
		if r.liveBytes.CompareAndSwap(cur, cur+size) {
			return nil
		}
	}
}

func (r *Registry) lookup(id uint64) *entry {
	r.mu.RLock()
	e := r.entries[id]
	r.mu.RUnlock()
	return e
}

// Borrow runs fn with the payload behind h. The payload must not be retained
// after fn returns.
func (r *Registry) Borrow(h Handle, kind Kind, fn func(payload any) error) error {
	e := r.lookup(h.id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.reclaimed {
		return fmt.Errorf("%w: %s reclaimed", ErrInvalidHandle, h)
	}
	if e.handle.kind != kind || e.handle != h {
		return fmt.Errorf("%w: %s is not a %s", ErrInvalidHandle, h, kind)
	}
	return fn(e.payload)
}

// BorrowMany borrows every referenced payload at once and passes them to fn
// in the order of refs. Locks are taken in ascending identifier order and a
// handle listed twice is locked once, so overlapping calls cannot deadlock
// against a pending Reclaim.
func (r *Registry) BorrowMany(refs []Ref, fn func(payloads []any) error) error {
	entries := make([]*entry, len(refs))
	for i, ref := range refs {
		e := r.lookup(ref.Handle.id)
		if e == nil {
			return fmt.Errorf("%w: %s", ErrInvalidHandle, ref.Handle)
		}
		entries[i] = e
	}

	order := make([]*entry, 0, len(entries))
	seen := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.handle.id]; dup {
			continue
		}
		seen[e.handle.id] = struct{}{}
		order = append(order, e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].handle.id < order[j].handle.id })

	for _, e := range order {
		e.mu.RLock()
	}
	defer func() {
		for i := len(order) - 1; i >= 0; i-- {
			order[i].mu.RUnlock()
		}
	}()

	payloads := make([]any, len(refs))
	for i, ref := range refs {
		e := entries[i]
		if e.reclaimed {
			return fmt.Errorf("%w: %s reclaimed", ErrInvalidHandle, ref.Handle)
		}
		if e.handle.kind != ref.Kind || e.handle != ref.Handle {
			return fmt.Errorf("%w: %s is not a %s", ErrInvalidHandle, ref.Handle, ref.Kind)
		}
		payloads[i] = e.payload
	}
	return fn(payloads)
}

// Reclaim drops the payload behind h. Reclaiming an already reclaimed handle
// is a no-op. Reclaiming a handle this registry never issued fails with
// ErrInvalidHandle.
func (r *Registry) Reclaim(h Handle) error {
	if h.id == 0 || h.id > r.next.Load() {
		return fmt.Errorf("%w: %s was never issued", ErrInvalidHandle, h)
	}
	e := r.lookup(h.id)
	if e == nil {
		return nil
	}
	if e.handle != h {
		return fmt.Errorf("%w: %s does not match %s", ErrInvalidHandle, h, e.handle)
	}

	e.mu.Lock()
	if e.reclaimed {
		e.mu.Unlock()
		return nil
	}
	e.reclaimed = true
	payload := e.payload
	e.payload = nil
	e.mu.Unlock()

	r.mu.Lock()
	delete(r.entries, h.id)
	r.mu.Unlock()

	if rel, ok := payload.(Releaser); ok {
		rel.Release()
	}
	r.liveBytes.Add(-e.size)
	r.reclaimed.Add(1)
	if r.observer != nil {
		r.observer.Reclaimed(h)
	}
	return nil
}

// Live reports whether h still refers to an unreclaimed payload.
func (r *Registry) Live(h Handle) bool {
	e := r.lookup(h.id)
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.reclaimed && e.handle == h
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	live := len(r.entries)
	r.mu.RUnlock()
	return Stats{
		Live:      live,
		Allocated: r.allocated.Load(),
		Reclaimed: r.reclaimed.Load(),
		LiveBytes: r.liveBytes.Load(),
		Budget:    r.budget,
	}
}

// Resolve borrows h and hands fn the payload asserted to T. A payload of a
// different Go type is reported as ErrInvalidHandle.
func Resolve[T any](r *Registry, h Handle, kind Kind, fn func(T) error) error {
	return r.Borrow(h, kind, func(payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: %s holds %T", ErrInvalidHandle, h, payload)
		}
		return fn(v)
	})
}
