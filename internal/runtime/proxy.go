package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
)

// Proxy is the single entry point for executing a registered action. It
// exposes exactly Available, Perform and Prepare: every dispatch runs the
// full check chain first, so there is no path that reaches the action's
// logic without passing through the gate.
//
// A proxy is bound to the registry generation it was obtained from; it is
// stateless per call and safe for concurrent use.
type Proxy struct {
	entry      *actionEntry
	idx        *stackIndex
	authorizer ports.Authorizer
	hooks      domain.GateHooks
	logger     *slog.Logger
}

// Proxy resolves an action within a stack and binds it to the given
// collaborators. Returns domain.ErrActionNotFound for unknown stacks or
// identifiers.
func (r *Registry) Proxy(stack, actionID string, authorizer ports.Authorizer, hooks domain.GateHooks, logger *slog.Logger) (*Proxy, error) {
	entry, idx, err := r.lookup(stack, actionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, domain.NodeKey(stack, actionID))
	}
	if logger == nil {
		logger = r.logger
	}
	return &Proxy{
		entry:      entry,
		idx:        idx,
		authorizer: authorizer,
		hooks:      hooks,
		logger:     logger.With("stack", entry.stack, "action", entry.id),
	}, nil
}

// Stack returns the stack the bound action is registered under.
func (p *Proxy) Stack() string { return p.entry.stack }

// ID returns the bound action's identifier.
func (p *Proxy) ID() string { return p.entry.id }

// Description returns the bound action's description.
func (p *Proxy) Description() string { return p.entry.action.Description }

// Available runs the constraint chain and a fresh availability evaluation
// and reports whether the call would be admitted. It never invokes the
// action's logic and performs no side effects; it is safe to call
// repeatedly and concurrently.
func (p *Proxy) Available(ctx context.Context, call *domain.Call) bool {
	denial := p.check(ctx, call)
	if denial != nil {
		p.logger.Debug("action unavailable", "stage", string(denial.Stage), "reason", denial.Reason)
	}
	return denial == nil
}

// Perform re-runs the full check chain and, only if every check passes,
// invokes the action's perform logic and returns its envelope. On a failed
// check the logic is never invoked and the returned error is a
// *domain.Denial carrying the failing stage and reason.
func (p *Proxy) Perform(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
	return p.dispatch(ctx, call, p.entry.action.Perform, domain.ErrNoPerform)
}

// Prepare is Perform's counterpart for the action's optional prepare
// logic, guarded by the same check chain.
func (p *Proxy) Prepare(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
	return p.dispatch(ctx, call, p.entry.action.Prepare, domain.ErrNoPrepare)
}

// check runs constraints then availability. Availability is evaluated
// fresh on every call: it is context-sensitive and must reflect the
// current caller, never a prior Available result.
func (p *Proxy) check(ctx context.Context, call *domain.Call) *domain.Denial {
	if denial := constraintVerdict(ctx, p.idx, p.entry); denial != nil {
		return denial
	}
	return newAvailabilityEvaluator(p.authorizer, call).evaluate(ctx, p.entry)
}

func (p *Proxy) dispatch(ctx context.Context, call *domain.Call, logic domain.PerformFunc, missing error) (*domain.Envelope, error) {
	if call == nil {
		call = &domain.Call{}
	}

	denial := p.check(ctx, call)
	p.emitDecision(ctx, denial)
	if denial != nil {
		p.logger.Info("call denied", "stage", string(denial.Stage), "reason", denial.Reason)
		return nil, denial
	}
	if logic == nil {
		return nil, fmt.Errorf("%s: %w", domain.NodeKey(p.entry.stack, p.entry.id), missing)
	}

	start := time.Now()
	envelope, err := logic(ctx, call)
	if envelope == nil && err == nil {
		envelope = domain.Success(nil)
	}
	p.emitPerform(ctx, time.Since(start), envelope, err)

	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", domain.NodeKey(p.entry.stack, p.entry.id), err)
	}
	return envelope, nil
}

func (p *Proxy) emitDecision(ctx context.Context, denial *domain.Denial) {
	if p.hooks.OnDecision == nil {
		return
	}
	event := &domain.DecisionEvent{
		Stack:   p.entry.stack,
		Action:  p.entry.id,
		Allowed: denial == nil,
	}
	if denial != nil {
		event.Stage = denial.Stage
		event.Reason = denial.Reason
	}
	p.hooks.OnDecision(ctx, event)
}

func (p *Proxy) emitPerform(ctx context.Context, duration time.Duration, envelope *domain.Envelope, err error) {
	if p.hooks.OnPerform == nil {
		return
	}
	p.hooks.OnPerform(ctx, &domain.PerformEvent{
		Stack:      p.entry.stack,
		Action:     p.entry.id,
		Duration:   duration,
		Successful: err == nil && envelope.Successful(),
		Err:        err,
	})
}
