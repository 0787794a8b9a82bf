package registry

import (
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
)

// Owned ties a handle to the registry that issued it. Typed wrappers embed it
// and install a finalizer that calls Free.
type Owned struct {
	reg   *Registry
	h     Handle
	freed atomic.Bool
}

// Init records ownership of h. It must be called once, before the wrapper is
// shared.
func (o *Owned) Init(r *Registry, h Handle) {
	o.reg = r
	o.h = h
}

// Handle returns the owned handle.
func (o *Owned) Handle() Handle {
	if o == nil {
		return Handle{}
	}
	return o.h
}

// Free reclaims the handle once. Later calls are no-ops.
func (o *Owned) Free() {
	if o == nil || o.reg == nil || o.freed.Swap(true) {
		return
	}
	_ = o.reg.Reclaim(o.h)
}

// Borrow resolves the owned handle.
func (o *Owned) Borrow(kind Kind, fn func(payload any) error) error {
	if o == nil || o.reg == nil {
		return fmt.Errorf("%w: uninitialized %s", ErrInvalidHandle, kind)
	}
	return o.reg.Borrow(o.h, kind, fn)
}

// With borrows o and hands fn its payload asserted to T.
func With[T any](o *Owned, kind Kind, fn func(T) error) error {
	if o == nil || o.reg == nil {
		return fmt.Errorf("%w: uninitialized %s", ErrInvalidHandle, kind)
	}
	return Resolve(o.reg, o.h, kind, fn)
}

// Want names one handle of a multi-handle borrow.
type Want struct {
	Owner *Owned
	Kind  Kind
}

// BorrowAll borrows every wanted handle at once. Handles may come from
// different registries; registries are visited in creation order and each
// one is borrowed with BorrowMany, so concurrent calls agree on lock order.
func BorrowAll(wants []Want, fn func(payloads []any) error) error {
	groups := make(map[*Registry][]int)
	var regs []*Registry
	for i, w := range wants {
		if w.Owner == nil || w.Owner.reg == nil {
			return fmt.Errorf("%w: uninitialized %s", ErrInvalidHandle, w.Kind)
		}
		r := w.Owner.reg
		if _, ok := groups[r]; !ok {
			regs = append(regs, r)
		}
		groups[r] = append(groups[r], i)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].serial < regs[j].serial })

	payloads := make([]any, len(wants))
	var visit func(k int) error
	visit = func(k int) error {
		if k == len(regs) {
			return fn(payloads)
		}
		idx := groups[regs[k]]
		refs := make([]Ref, len(idx))
		for j, i := range idx {
			refs[j] = Ref{Handle: wants[i].Owner.h, Kind: wants[i].Kind}
		}
		return regs[k].BorrowMany(refs, func(ps []any) error {
			for j, i := range idx {
				payloads[i] = ps[j]
			}
			return visit(k + 1)
		})
	}
	err := visit(0)
	for _, w := range wants {
		runtime.KeepAlive(w.Owner)
	}
	return err
}
