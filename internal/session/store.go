// Package session provides the per-visitor key-value store backing the
// shopping cart. A session is a set of named fields owned by one visitor;
// values are opaque byte payloads encoded by the caller.
package session

import "context"

// Store is the session key-value store consumed by the cart. Get returns
// domain.ErrNotFound when the field (or the whole session) does not exist.
type Store interface {
	Get(ctx context.Context, sessionID, field string) ([]byte, error)
	Set(ctx context.Context, sessionID, field string, value []byte) error
	Delete(ctx context.Context, sessionID, field string) error
}
