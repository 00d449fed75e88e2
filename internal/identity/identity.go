// Package identity verifies bearer credentials and yields the caller's
// verified principal. No mutation path in the service is reachable without
// one.
package identity

import "context"

// Principal is the verified identity of the caller, derived from a validated
// credential. It lives for one request and is never persisted.
type Principal struct {
	UID   string
	Email string
}

// Verifier validates a raw bearer credential against the identity provider.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Principal, error)
}
