package domain

import "context"

// Constraint is an environment-level prerequisite probe.
// Probes inspect the surrounding process environment (binaries on the
// search path, loaded extensions, reachable services) and are expected to
// be deterministic within a registry generation; results are cached by the
// gate until Reset.
type Constraint struct {
	// Name identifies the probe in logs. Optional.
	Name string
	// Probe reports whether the prerequisite is currently satisfied.
	Probe func(ctx context.Context) bool
}

// Constrained is the capability shared by both node kinds: anything that
// declares environment prerequisites.
type Constrained interface {
	ConstraintList() []Constraint
}

// Feature is a non-executable grouping node. It holds child actions and
// nested features plus the constraints that gate the whole subtree.
//
// A feature must declare at least one child; empty features are rejected
// at registration. Only the root feature of a tree may declare a Stack.
type Feature struct {
	// ID is the explicit identifier override. When empty, the identifier
	// is derived from Name and the nesting path at registration time.
	ID string
	// Name is the declared type-style name (e.g. "AdminFeature") used for
	// identifier derivation. Ignored when ID is set.
	Name string
	// Stack names the namespace this tree registers under. Valid only on
	// the root feature; defaults to DefaultStack.
	Stack string
	// Description is an optional human-readable summary.
	Description string

	Constraints []Constraint

	// Actions and Features are the declared children, in order.
	Actions  []*Action
	Features []*Feature
}

// ConstraintList implements Constrained.
func (f *Feature) ConstraintList() []Constraint { return f.Constraints }

// PerformFunc is the operation logic invoked by the execution proxy once
// every check has passed. A nil envelope with a nil error is wrapped into
// an empty success envelope by the proxy.
type PerformFunc func(ctx context.Context, call *Call) (*Envelope, error)

// Action is an executable node. Execution is always mediated by a proxy
// obtained from the gate; the proxy verifies the constraint chain and the
// availability checks before dispatching to Perform or Prepare.
type Action struct {
	// ID is the explicit identifier override; derived from Name when empty.
	ID string
	// Name is the declared type-style name (e.g. "PurgeCacheAction") used
	// for identifier derivation. Ignored when ID is set.
	Name string
	// Description is an optional human-readable summary.
	Description string

	// AllowGuests permits execution without an authenticated principal.
	// When false (the default), calls carrying no principal are denied
	// before any availability check runs.
	AllowGuests bool

	Constraints  []Constraint
	Availability []Check

	// Perform is the primary operation logic. Dispatching an action
	// without one yields ErrNoPerform.
	Perform PerformFunc
	// Prepare is optional setup logic guarded by the same check chain.
	Prepare PerformFunc
}

// ConstraintList implements Constrained.
func (a *Action) ConstraintList() []Constraint { return a.Constraints }
