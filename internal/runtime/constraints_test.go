package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/palisade/internal/runtime"
	"github.com/aretw0/palisade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProbe returns a constraint yielding *verdict and counting its
// invocations.
func countingProbe(verdict *bool, calls *int) domain.Constraint {
	return domain.Constraint{
		Name: "counting",
		Probe: func(context.Context) bool {
			*calls++
			return *verdict
		},
	}
}

func proxyFor(t *testing.T, r *runtime.Registry, stack, id string) *runtime.Proxy {
	t.Helper()
	p, err := r.Proxy(stack, id, nil, domain.GateHooks{}, nil)
	require.NoError(t, err)
	return p
}

func TestConstraints_CachedPerNode(t *testing.T) {
	ctx := context.Background()
	verdict := true
	calls := 0

	r := runtime.NewRegistry(nil)
	require.NoError(t, r.Register(&domain.Feature{
		Name:        "ToolingFeature",
		Constraints: []domain.Constraint{countingProbe(&verdict, &calls)},
		Actions:     []*domain.Action{{ID: "run", AllowGuests: true, Perform: noopPerform}},
	}))

	p := proxyFor(t, r, "", "run")

	assert.True(t, p.Available(ctx, nil))
	assert.Equal(t, 1, calls)

	// The environment fact flips, but the cached verdict keeps serving.
	verdict = false
	assert.True(t, p.Available(ctx, nil))
	assert.True(t, p.Available(ctx, nil))
	assert.Equal(t, 1, calls)
}

func TestConstraints_ResetAllowsNewVerdict(t *testing.T) {
	ctx := context.Background()
	verdict := false
	calls := 0

	tree := func() *domain.Feature {
		return &domain.Feature{
			Name:        "ToolingFeature",
			Constraints: []domain.Constraint{countingProbe(&verdict, &calls)},
			Actions:     []*domain.Action{{ID: "run", AllowGuests: true, Perform: noopPerform}},
		}
	}

	r := runtime.NewRegistry(nil)
	require.NoError(t, r.Register(tree()))
	assert.False(t, proxyFor(t, r, "", "run").Available(ctx, nil))
	assert.Equal(t, 1, calls)

	// Only a reset (plus re-registration) lets a new value be observed.
	r.Reset()
	verdict = true
	require.NoError(t, r.Register(tree()))
	assert.True(t, proxyFor(t, r, "", "run").Available(ctx, nil))
	assert.Equal(t, 2, calls)
}

func TestConstraints_AncestorChain(t *testing.T) {
	ctx := context.Background()

	t.Run("Failing Ancestor Blocks The Action", func(t *testing.T) {
		rootVerdict, nestedVerdict, actionVerdict := false, true, true
		rootCalls, nestedCalls, actionCalls := 0, 0, 0

		r := runtime.NewRegistry(nil)
		require.NoError(t, r.Register(&domain.Feature{
			ID:          "a",
			Constraints: []domain.Constraint{countingProbe(&rootVerdict, &rootCalls)},
			Features: []*domain.Feature{
				{
					ID:          "b",
					Constraints: []domain.Constraint{countingProbe(&nestedVerdict, &nestedCalls)},
					Actions: []*domain.Action{
						{
							ID:          "x",
							AllowGuests: true,
							Constraints: []domain.Constraint{countingProbe(&actionVerdict, &actionCalls)},
							Perform:     noopPerform,
						},
					},
				},
			},
		}))

		p := proxyFor(t, r, "", "x")
		assert.False(t, p.Available(ctx, nil))

		// Evaluation short-circuits at the failing root; deeper nodes are
		// never probed.
		assert.Equal(t, 1, rootCalls)
		assert.Equal(t, 0, nestedCalls)
		assert.Equal(t, 0, actionCalls)

		_, err := p.Perform(ctx, nil)
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, domain.StageConstraint, denial.Stage)
		assert.Equal(t, "a", denial.Node)
	})

	t.Run("Own Constraint Checked After Ancestors", func(t *testing.T) {
		actionVerdict := false
		actionCalls := 0

		r := runtime.NewRegistry(nil)
		require.NoError(t, r.Register(&domain.Feature{
			ID: "a",
			Actions: []*domain.Action{
				{
					ID:          "x",
					AllowGuests: true,
					Constraints: []domain.Constraint{countingProbe(&actionVerdict, &actionCalls)},
					Perform:     noopPerform,
				},
			},
		}))

		p := proxyFor(t, r, "", "x")
		_, err := p.Perform(ctx, nil)
		denial := domain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, domain.StageConstraint, denial.Stage)
		assert.Equal(t, "x", denial.Node)
	})
}
