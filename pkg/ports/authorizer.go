package ports

import (
	"context"
	"fmt"

	"github.com/aretw0/palisade/pkg/domain"
)

// Authorizer is the pluggable authorization backend consulted by the
// capability availability check. Implementations decide whether the
// principal holds the named capability over the subject. The core mandates
// no default implementation.
type Authorizer interface {
	CheckCapability(ctx context.Context, principal *domain.Principal, capability string, subject any) (bool, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, principal *domain.Principal, capability string, subject any) (bool, error)

// CheckCapability implements Authorizer.
func (f AuthorizerFunc) CheckCapability(ctx context.Context, principal *domain.Principal, capability string, subject any) (bool, error) {
	return f(ctx, principal, capability, subject)
}

// AllowAll returns an Authorizer granting every capability. Intended for
// tests and local development.
func AllowAll() Authorizer {
	return AuthorizerFunc(func(context.Context, *domain.Principal, string, any) (bool, error) {
		return true, nil
	})
}

// DenyAll returns an Authorizer granting nothing.
func DenyAll() Authorizer {
	return AuthorizerFunc(func(context.Context, *domain.Principal, string, any) (bool, error) {
		return false, nil
	})
}

// GrantingAuthorizer is implemented by mutable backends (memory, redis)
// that can record capability grants. It exists so adapter tests can share
// the contract suite.
type GrantingAuthorizer interface {
	Authorizer

	// Grant records that principal holds capability over the given subject
	// keys. With no subjects the grant is a wildcard covering any subject.
	Grant(ctx context.Context, principal, capability string, subjects ...string) error

	// Revoke removes a grant. With no subjects the whole capability grant
	// is removed, including a wildcard.
	Revoke(ctx context.Context, principal, capability string, subjects ...string) error
}

// SubjectKey normalizes a check subject into the string form grants are
// stored under.
func SubjectKey(subject any) string {
	switch s := subject.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}
