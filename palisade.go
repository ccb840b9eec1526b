package palisade

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/palisade/internal/runtime"
	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
)

// Proxy is the execution wrapper bound to one registered action. See
// the Available/Perform/Prepare methods for the check-then-dispatch
// contract.
type Proxy = runtime.Proxy

// Gate is the high-level entry point for the Palisade library. It owns a
// registry of declared trees and hands out execution proxies that verify
// constraints and availability before dispatching.
type Gate struct {
	registry   *runtime.Registry
	authorizer ports.Authorizer
	hooks      domain.GateHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Gate.
type Option func(*Gate)

// WithLogger sets a custom structured logger for the gate.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithAuthorizer plugs in the authorization backend consulted by
// capability checks. Without one, every capability check denies.
func WithAuthorizer(authorizer ports.Authorizer) Option {
	return func(g *Gate) {
		g.authorizer = authorizer
	}
}

// WithHooks registers observability hooks invoked on decisions and
// dispatches.
func WithHooks(hooks domain.GateHooks) Option {
	return func(g *Gate) {
		g.hooks = hooks
	}
}

// New initializes an empty Gate. Trees are added with Register; the gate
// must be fully registered before concurrent traffic starts evaluating
// against it.
func New(opts ...Option) *Gate {
	g := &Gate{}
	for _, opt := range opts {
		opt(g)
	}

	// Ensure logger is initialized (so we don't pass nil to the registry).
	if g.logger == nil {
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	g.registry = runtime.NewRegistry(g.logger)
	return g
}

// Register validates and records the tree reachable from root under the
// root's declared stack. A *domain.StructuralError aborts the whole tree;
// nothing from it is recorded.
func (g *Gate) Register(root *domain.Feature) error {
	return g.registry.Register(root)
}

// Reset clears the named stacks (or everything when none are given),
// including cached constraint verdicts. Used to rebuild state between
// independent registration epochs.
func (g *Gate) Reset(stacks ...string) {
	g.registry.Reset(stacks...)
}

// Proxy resolves an action and binds it to the gate's collaborators.
func (g *Gate) Proxy(stack, actionID string) (*Proxy, error) {
	return g.registry.Proxy(stack, actionID, g.authorizer, g.hooks, g.logger)
}

// AncestorsOf returns the ordered feature chain (root first) the action
// belongs to.
func (g *Gate) AncestorsOf(stack, actionID string) ([]*domain.Feature, error) {
	return g.registry.AncestorsOf(stack, actionID)
}

// Available reports whether the action would admit the call, without
// invoking its logic.
func (g *Gate) Available(ctx context.Context, stack, actionID string, call *domain.Call) (bool, error) {
	proxy, err := g.Proxy(stack, actionID)
	if err != nil {
		return false, err
	}
	return proxy.Available(ctx, call), nil
}

// Perform resolves the action and dispatches it through the full check
// chain. See Proxy.Perform.
func (g *Gate) Perform(ctx context.Context, stack, actionID string, call *domain.Call) (*domain.Envelope, error) {
	proxy, err := g.Proxy(stack, actionID)
	if err != nil {
		return nil, err
	}
	return proxy.Perform(ctx, call)
}

// Prepare resolves the action and dispatches its prepare logic through
// the full check chain. See Proxy.Prepare.
func (g *Gate) Prepare(ctx context.Context, stack, actionID string, call *domain.Call) (*domain.Envelope, error) {
	proxy, err := g.Proxy(stack, actionID)
	if err != nil {
		return nil, err
	}
	return proxy.Prepare(ctx, call)
}

// Inspect returns the full registered tree structure for visualization or
// introspection tools.
func (g *Gate) Inspect() []domain.StackInfo {
	return g.registry.Inspect()
}

// Stacks returns the sorted names of all registered stacks.
func (g *Gate) Stacks() []string {
	return g.registry.Stacks()
}
