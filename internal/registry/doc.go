// Package registry owns every native object handed out by the toolkit.
//
// # Design Principles
//
//  1. Ownership: a payload placed in the registry is owned by exactly one
//     entry. Callers only ever hold a Handle, never the payload itself.
//
//  2. Borrowing: payloads are reachable only through Borrow/BorrowMany, and
//     the view is valid only for the duration of the callback.
//
//  3. Reclamation: Reclaim is idempotent. The first call drops the payload,
//     every later call is a no-op, and every later Borrow fails with
//     ErrInvalidHandle.
//
//  4. Identity: identifiers are drawn from a monotonically increasing counter
//     and are never recycled, so a stale handle can never resolve to a newer
//     object.
//
// # Threading
//
// Borrows of different handles proceed in parallel. Borrow and Reclaim of the
// same handle are serialized by a per-entry lock; a Reclaim that has returned
// happens-before any Borrow that starts after it.
package registry
