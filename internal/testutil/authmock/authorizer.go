package authmock

import (
	"context"
	"sync"

	"p2plending/internal/domain/loan"
)

// Authorizer grants exactly the identities it was built with and records
// every check.
type Authorizer struct {
	mu      sync.Mutex
	allowed map[string]bool
	calls   []string
}

func Allow(identities ...string) *Authorizer {
	a := &Authorizer{allowed: map[string]bool{}}
	for _, id := range identities {
		a.allowed[id] = true
	}
	return a
}

func (a *Authorizer) RequireAuth(_ context.Context, identity string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, identity)
	if a.allowed[identity] {
		return nil
	}
	return loan.ErrNotAuthorized
}

// Grant adds identities after construction.
func (a *Authorizer) Grant(identities ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range identities {
		a.allowed[id] = true
	}
}

func (a *Authorizer) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}
