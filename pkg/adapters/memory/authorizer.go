// Package memory provides an in-process authorization backend. It is the
// default choice for tests and single-process deployments; multi-process
// deployments should prefer the redis adapter.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
)

const wildcard = "*"

// Authorizer implements ports.GrantingAuthorizer with an in-memory grant
// table: principal -> capability -> subject keys. Safe for concurrent use.
type Authorizer struct {
	mu     sync.RWMutex
	grants map[string]map[string]map[string]struct{}
}

// New creates an empty in-memory authorizer.
func New() *Authorizer {
	return &Authorizer{
		grants: make(map[string]map[string]map[string]struct{}),
	}
}

// CheckCapability implements ports.Authorizer. Guests (nil principal)
// hold no capabilities.
func (a *Authorizer) CheckCapability(ctx context.Context, principal *domain.Principal, capability string, subject any) (bool, error) {
	if principal == nil {
		return false, nil
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	subjects, ok := a.grants[principal.ID][capability]
	if !ok {
		return false, nil
	}
	if _, ok := subjects[wildcard]; ok {
		return true, nil
	}
	_, ok = subjects[ports.SubjectKey(subject)]
	return ok, nil
}

// Grant implements ports.GrantingAuthorizer. With no subjects the grant
// is a wildcard covering any subject.
func (a *Authorizer) Grant(ctx context.Context, principal, capability string, subjects ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	caps, ok := a.grants[principal]
	if !ok {
		caps = make(map[string]map[string]struct{})
		a.grants[principal] = caps
	}
	set, ok := caps[capability]
	if !ok {
		set = make(map[string]struct{})
		caps[capability] = set
	}
	if len(subjects) == 0 {
		set[wildcard] = struct{}{}
		return nil
	}
	for _, s := range subjects {
		set[s] = struct{}{}
	}
	return nil
}

// Revoke implements ports.GrantingAuthorizer. With no subjects the whole
// capability grant is removed.
func (a *Authorizer) Revoke(ctx context.Context, principal, capability string, subjects ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	caps, ok := a.grants[principal]
	if !ok {
		return nil
	}
	if len(subjects) == 0 {
		delete(caps, capability)
		return nil
	}
	set, ok := caps[capability]
	if !ok {
		return nil
	}
	for _, s := range subjects {
		delete(set, s)
	}
	return nil
}
