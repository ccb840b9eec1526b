// Package redis provides an authorization backend backed by Redis sets,
// letting multiple gate processes share one grant table.
package redis

import (
	"context"
	"fmt"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const wildcard = "*"

// Authorizer implements ports.GrantingAuthorizer on top of Redis. Each
// (principal, capability) pair maps to a set of granted subject keys,
// with "*" standing for any subject.
type Authorizer struct {
	client *backend.Client
	prefix string
}

// Option configures the Authorizer.
type Option func(*Authorizer)

// WithPrefix sets the key prefix for grant sets.
func WithPrefix(prefix string) Option {
	return func(a *Authorizer) {
		a.prefix = prefix
	}
}

// New creates a Redis authorizer with its own client.
func New(address, password string, db int, opts ...Option) *Authorizer {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis authorizer from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Authorizer {
	a := &Authorizer{
		client: client,
		prefix: "palisade:grant:",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authorizer) key(principal, capability string) string {
	return a.prefix + principal + ":" + capability
}

// CheckCapability implements ports.Authorizer. Guests (nil principal)
// hold no capabilities.
func (a *Authorizer) CheckCapability(ctx context.Context, principal *domain.Principal, capability string, subject any) (bool, error) {
	if principal == nil {
		return false, nil
	}

	members, err := a.client.SMIsMember(ctx, a.key(principal.ID, capability), wildcard, ports.SubjectKey(subject)).Result()
	if err != nil {
		return false, fmt.Errorf("redis capability check: %w", err)
	}
	for _, ok := range members {
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Grant implements ports.GrantingAuthorizer.
func (a *Authorizer) Grant(ctx context.Context, principal, capability string, subjects ...string) error {
	members := make([]any, 0, len(subjects))
	if len(subjects) == 0 {
		members = append(members, wildcard)
	}
	for _, s := range subjects {
		members = append(members, s)
	}
	if err := a.client.SAdd(ctx, a.key(principal, capability), members...).Err(); err != nil {
		return fmt.Errorf("redis grant: %w", err)
	}
	return nil
}

// Revoke implements ports.GrantingAuthorizer. With no subjects the whole
// grant set is deleted.
func (a *Authorizer) Revoke(ctx context.Context, principal, capability string, subjects ...string) error {
	key := a.key(principal, capability)
	if len(subjects) == 0 {
		if err := a.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis revoke: %w", err)
		}
		return nil
	}
	members := make([]any, 0, len(subjects))
	for _, s := range subjects {
		members = append(members, s)
	}
	if err := a.client.SRem(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("redis revoke: %w", err)
	}
	return nil
}
