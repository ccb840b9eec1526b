package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/palisade/internal/runtime"
	"github.com/aretw0/palisade/pkg/adapters/memory"
	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTree(t *testing.T, r *runtime.Registry, root *domain.Feature) {
	t.Helper()
	require.NoError(t, r.Register(root))
}

func userCall(id string) *domain.Call {
	return &domain.Call{Principal: &domain.Principal{ID: id}}
}

func TestProxy_Resolution(t *testing.T) {
	r := runtime.NewRegistry(nil)
	registerTree(t, r, &domain.Feature{
		ID:      "content",
		Actions: []*domain.Action{simpleAction("publish")},
	})

	t.Run("Resolves Registered Action", func(t *testing.T) {
		p, err := r.Proxy("", "publish", nil, domain.GateHooks{}, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStack, p.Stack())
		assert.Equal(t, "publish", p.ID())
	})

	t.Run("Unknown Action", func(t *testing.T) {
		_, err := r.Proxy("", "retract", nil, domain.GateHooks{}, nil)
		require.ErrorIs(t, err, domain.ErrActionNotFound)
		assert.Contains(t, err.Error(), "default/retract")
	})

	t.Run("Unknown Stack", func(t *testing.T) {
		_, err := r.Proxy("ghost", "publish", nil, domain.GateHooks{}, nil)
		require.ErrorIs(t, err, domain.ErrActionNotFound)
	})
}

func TestProxy_GuestGuard(t *testing.T) {
	ctx := context.Background()
	r := runtime.NewRegistry(nil)
	registerTree(t, r, &domain.Feature{
		ID: "content",
		Actions: []*domain.Action{
			{ID: "publish", Perform: noopPerform},
			{ID: "preview", AllowGuests: true, Perform: noopPerform},
		},
	})

	t.Run("Guest Denied By Default", func(t *testing.T) {
		p := proxyFor(t, r, "", "publish")
		assert.False(t, p.Available(ctx, nil))

		_, err := p.Perform(ctx, nil)
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, domain.StageAvailability, denial.Stage)
		assert.Equal(t, domain.ReasonUnauthenticated, denial.Reason)
	})

	t.Run("Guest Allowed When Opted In", func(t *testing.T) {
		p := proxyFor(t, r, "", "preview")
		assert.True(t, p.Available(ctx, nil))

		envelope, err := p.Perform(ctx, nil)
		require.NoError(t, err)
		assert.True(t, envelope.Successful())
	})

	t.Run("Authenticated Principal Passes", func(t *testing.T) {
		p := proxyFor(t, r, "", "publish")
		assert.True(t, p.Available(ctx, userCall("alice")))
	})
}

func TestProxy_AvailabilityChecks(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, checks ...domain.Check) *runtime.Proxy {
		t.Helper()
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{ID: "act", AllowGuests: true, Availability: checks, Perform: noopPerform},
			},
		})
		return proxyFor(t, r, "", "act")
	}

	t.Run("Truthy", func(t *testing.T) {
		p := register(t, domain.Truthy(domain.Arg("flag"), "flag required"))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"flag": true}}))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"flag": "yes"}}))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"flag": 0}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"flag": false}}))
		assert.False(t, p.Available(ctx, nil))
	})

	t.Run("Falsy", func(t *testing.T) {
		p := register(t, domain.Falsy(domain.Arg("locked"), "must not be locked"))
		assert.True(t, p.Available(ctx, nil))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"locked": false}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"locked": true}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"locked": "soft"}}))
	})

	t.Run("Equal And NotEqual", func(t *testing.T) {
		p := register(t, domain.Equal(domain.Arg("confirm"), domain.Lit("yes"), "confirmation required"))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"confirm": "yes"}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"confirm": "no"}}))

		p = register(t, domain.NotEqual(domain.Subject(), domain.PrincipalAttr("team"), "cannot target own team"))
		call := &domain.Call{
			Principal: &domain.Principal{ID: "alice", Attrs: map[string]any{"team": "core"}},
			Subject:   "infra",
		}
		assert.True(t, p.Available(ctx, call))
		call.Subject = "core"
		assert.False(t, p.Available(ctx, call))
	})

	t.Run("Nil And NotNil", func(t *testing.T) {
		p := register(t, domain.IsNil(domain.Arg("draft"), "already drafted"))
		assert.True(t, p.Available(ctx, nil))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"draft": "v1"}}))

		p = register(t, domain.NotNil(domain.Subject(), "subject required"))
		assert.True(t, p.Available(ctx, &domain.Call{Subject: "article-9"}))
		assert.False(t, p.Available(ctx, nil))
	})

	t.Run("Empty And NotEmpty", func(t *testing.T) {
		p := register(t, domain.NotEmpty(domain.Arg("title"), "title required"))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"title": "hello"}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"title": ""}}))
		assert.False(t, p.Available(ctx, nil))

		p = register(t, domain.Empty(domain.Arg("errors"), "unresolved errors remain"))
		assert.True(t, p.Available(ctx, &domain.Call{Args: map[string]any{"errors": []string{}}}))
		assert.False(t, p.Available(ctx, &domain.Call{Args: map[string]any{"errors": []string{"boom"}}}))
	})

	t.Run("Fail Fast Reports First Failure Only", func(t *testing.T) {
		secondEvaluated := false
		p := register(t,
			domain.Truthy(domain.Arg("first"), "first failed"),
			domain.Truthy(func(*domain.Call) any {
				secondEvaluated = true
				return true
			}, "second failed"),
		)

		_, err := p.Perform(ctx, &domain.Call{})
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, "first failed", denial.Reason)
		assert.False(t, secondEvaluated)
	})

	t.Run("Default Message", func(t *testing.T) {
		p := register(t, domain.Truthy(domain.Arg("flag"), ""))
		_, err := p.Perform(ctx, &domain.Call{})
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, "requirement not met", denial.Reason)
	})
}

func TestProxy_CapabilityChecks(t *testing.T) {
	ctx := context.Background()

	newProxy := func(t *testing.T, auth ports.Authorizer) *runtime.Proxy {
		t.Helper()
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "content",
			Actions: []*domain.Action{
				{
					ID:           "publish",
					Availability: []domain.Check{domain.Can("publish", nil, "")},
					Perform:      noopPerform,
				},
			},
		})
		p, err := r.Proxy("", "publish", auth, domain.GateHooks{}, nil)
		require.NoError(t, err)
		return p
	}

	t.Run("Verdict Depends On Principal", func(t *testing.T) {
		auth := memory.New()
		require.NoError(t, auth.Grant(ctx, "alice", "publish"))
		p := newProxy(t, auth)

		assert.True(t, p.Available(ctx, userCall("alice")))
		assert.False(t, p.Available(ctx, userCall("bob")))

		// Availability is never cached: a fresh grant changes the verdict
		// immediately.
		require.NoError(t, auth.Grant(ctx, "bob", "publish"))
		assert.True(t, p.Available(ctx, userCall("bob")))
	})

	t.Run("Subject Scoped Grant", func(t *testing.T) {
		auth := memory.New()
		require.NoError(t, auth.Grant(ctx, "alice", "publish", "article-1"))
		p := newProxy(t, auth)

		call := userCall("alice")
		call.Subject = "article-1"
		assert.True(t, p.Available(ctx, call))
		call.Subject = "article-2"
		assert.False(t, p.Available(ctx, call))
	})

	t.Run("Missing Backend Denies", func(t *testing.T) {
		p := newProxy(t, nil)
		_, err := p.Perform(ctx, userCall("alice"))
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, "no authorization backend configured", denial.Reason)
	})

	t.Run("Denied Capability Message", func(t *testing.T) {
		p := newProxy(t, memory.New())
		_, err := p.Perform(ctx, userCall("mallory"))
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, "not allowed to publish", denial.Reason)
	})
}

func TestProxy_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Perform Returns Action Envelope", func(t *testing.T) {
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:          "act",
					AllowGuests: true,
					Perform: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
						return domain.Success(map[string]any{"echo": call.Arg("msg")}), nil
					},
				},
			},
		})

		p := proxyFor(t, r, "", "act")
		envelope, err := p.Perform(ctx, &domain.Call{Args: map[string]any{"msg": "hi"}})
		require.NoError(t, err)
		assert.Equal(t, "hi", envelope.DataAt("echo"))
	})

	t.Run("Nil Envelope Becomes Empty Success", func(t *testing.T) {
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:          "act",
					AllowGuests: true,
					Perform: func(context.Context, *domain.Call) (*domain.Envelope, error) {
						return nil, nil
					},
				},
			},
		})

		envelope, err := proxyFor(t, r, "", "act").Perform(ctx, nil)
		require.NoError(t, err)
		require.NotNil(t, envelope)
		assert.True(t, envelope.Successful())
		assert.Nil(t, envelope.Data())
	})

	t.Run("Action Error Is Wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:          "act",
					AllowGuests: true,
					Perform: func(context.Context, *domain.Call) (*domain.Envelope, error) {
						return nil, boom
					},
				},
			},
		})

		_, err := proxyFor(t, r, "", "act").Perform(ctx, nil)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "default/act")
	})

	t.Run("Missing Perform", func(t *testing.T) {
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID:      "f",
			Actions: []*domain.Action{{ID: "act", AllowGuests: true}},
		})

		_, err := proxyFor(t, r, "", "act").Perform(ctx, nil)
		require.ErrorIs(t, err, domain.ErrNoPerform)
	})

	t.Run("Missing Prepare", func(t *testing.T) {
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID:      "f",
			Actions: []*domain.Action{{ID: "act", AllowGuests: true, Perform: noopPerform}},
		})

		_, err := proxyFor(t, r, "", "act").Prepare(ctx, nil)
		require.ErrorIs(t, err, domain.ErrNoPrepare)
	})

	t.Run("Prepare Runs The Same Checks", func(t *testing.T) {
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:      "act",
					Perform: noopPerform,
					Prepare: func(context.Context, *domain.Call) (*domain.Envelope, error) {
						return domain.Success(map[string]any{"draft": true}), nil
					},
				},
			},
		})

		p := proxyFor(t, r, "", "act")
		_, err := p.Prepare(ctx, nil)
		assert.True(t, domain.IsDenied(err))

		envelope, err := p.Prepare(ctx, userCall("alice"))
		require.NoError(t, err)
		assert.Equal(t, true, envelope.DataAt("draft"))
	})

	t.Run("Available Never Invokes Logic", func(t *testing.T) {
		performed := false
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:          "act",
					AllowGuests: true,
					Perform: func(context.Context, *domain.Call) (*domain.Envelope, error) {
						performed = true
						return nil, nil
					},
				},
			},
		})

		assert.True(t, proxyFor(t, r, "", "act").Available(ctx, nil))
		assert.False(t, performed)
	})
}

func TestProxy_Hooks(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T, hooks domain.GateHooks) *runtime.Proxy {
		t.Helper()
		r := runtime.NewRegistry(nil)
		registerTree(t, r, &domain.Feature{
			ID: "f",
			Actions: []*domain.Action{
				{
					ID:           "act",
					AllowGuests:  true,
					Availability: []domain.Check{domain.Truthy(domain.Arg("go"), "not ready")},
					Perform:      noopPerform,
				},
			},
		})
		p, err := r.Proxy("", "act", nil, hooks, nil)
		require.NoError(t, err)
		return p
	}

	t.Run("Decision And Perform Events On Success", func(t *testing.T) {
		var decisions []*domain.DecisionEvent
		var performs []*domain.PerformEvent
		p := build(t, domain.GateHooks{
			OnDecision: func(_ context.Context, e *domain.DecisionEvent) { decisions = append(decisions, e) },
			OnPerform:  func(_ context.Context, e *domain.PerformEvent) { performs = append(performs, e) },
		})

		_, err := p.Perform(ctx, &domain.Call{Args: map[string]any{"go": true}})
		require.NoError(t, err)

		require.Len(t, decisions, 1)
		assert.True(t, decisions[0].Allowed)
		assert.Equal(t, "act", decisions[0].Action)

		require.Len(t, performs, 1)
		assert.True(t, performs[0].Successful)
		assert.GreaterOrEqual(t, performs[0].Duration, time.Duration(0))
	})

	t.Run("Denied Dispatch Emits Decision Only", func(t *testing.T) {
		var decisions []*domain.DecisionEvent
		performCount := 0
		p := build(t, domain.GateHooks{
			OnDecision: func(_ context.Context, e *domain.DecisionEvent) { decisions = append(decisions, e) },
			OnPerform:  func(context.Context, *domain.PerformEvent) { performCount++ },
		})

		_, err := p.Perform(ctx, &domain.Call{})
		assert.True(t, domain.IsDenied(err))

		require.Len(t, decisions, 1)
		assert.False(t, decisions[0].Allowed)
		assert.Equal(t, domain.StageAvailability, decisions[0].Stage)
		assert.Equal(t, "not ready", decisions[0].Reason)
		assert.Equal(t, 0, performCount)
	})

	t.Run("Available Emits No Events", func(t *testing.T) {
		events := 0
		p := build(t, domain.GateHooks{
			OnDecision: func(context.Context, *domain.DecisionEvent) { events++ },
			OnPerform:  func(context.Context, *domain.PerformEvent) { events++ },
		})

		p.Available(ctx, &domain.Call{Args: map[string]any{"go": true}})
		p.Available(ctx, &domain.Call{})
		assert.Equal(t, 0, events)
	})
}
