package runtime

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/palisade/pkg/domain"
)

// Registry is the single source of truth for registered gate trees. It
// maps stack -> identifier -> node and keeps a reverse index from each
// action to its ordered ancestor feature chain.
//
// Registration is a single-writer initialization phase: trees must be
// fully registered before concurrent traffic evaluates against them.
// Afterwards the registry is read-mostly and safe for parallel readers.
type Registry struct {
	mu     sync.RWMutex
	stacks map[string]*stackIndex
	logger *slog.Logger
}

type stackIndex struct {
	features map[string]*featureEntry
	actions  map[string]*actionEntry
	roots    []*featureEntry

	// cache holds the memoized constraint verdict per node identifier.
	// Concurrent first writes are benign: probes are deterministic within
	// a generation, so publication only needs per-entry atomicity.
	cache *sync.Map
}

type featureEntry struct {
	id       string
	feature  *domain.Feature
	children []*featureEntry
	actions  []*actionEntry
}

type actionEntry struct {
	id        string
	stack     string
	action    *domain.Action
	ancestors []*featureEntry // root first
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		stacks: make(map[string]*stackIndex),
		logger: logger,
	}
}

// Register validates and records the tree reachable from root under the
// root's declared stack. The whole tree is committed atomically: on a
// StructuralError nothing from it is recorded.
func (r *Registry) Register(root *domain.Feature) error {
	if root == nil {
		return &domain.StructuralError{Code: domain.CodeNilChild, Detail: "nil root feature"}
	}
	stack := root.Stack
	if stack == "" {
		stack = domain.DefaultStack
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	staging := r.stacks[stack].fork()
	w := &walker{stack: stack, idx: staging}
	entry, err := w.feature(root, nil, true, nil)
	if err != nil {
		return err
	}
	staging.roots = append(staging.roots, entry)
	r.stacks[stack] = staging

	r.logger.Debug("registered gate tree",
		"stack", stack,
		"root", entry.id,
		"features", len(staging.features),
		"actions", len(staging.actions))
	return nil
}

// fork returns a staging copy sharing the constraint cache, so a failed
// registration leaves the published index untouched.
func (idx *stackIndex) fork() *stackIndex {
	next := &stackIndex{
		features: make(map[string]*featureEntry),
		actions:  make(map[string]*actionEntry),
		cache:    &sync.Map{},
	}
	if idx == nil {
		return next
	}
	for id, fe := range idx.features {
		next.features[id] = fe
	}
	for id, ae := range idx.actions {
		next.actions[id] = ae
	}
	next.roots = append(next.roots, idx.roots...)
	next.cache = idx.cache
	return next
}

// Reset clears the named stacks, or every stack when none are given. All
// nodes and constraint cache entries for the cleared stacks are dropped;
// proxies obtained before the reset keep observing the old generation.
func (r *Registry) Reset(stacks ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(stacks) == 0 {
		r.stacks = make(map[string]*stackIndex)
		return
	}
	for _, stack := range stacks {
		if stack == "" {
			stack = domain.DefaultStack
		}
		delete(r.stacks, stack)
	}
}

// AncestorsOf returns the ordered feature chain (root first) the action
// belongs to. The order is informational: constraint composition is a
// logical AND, so correctness does not depend on it.
func (r *Registry) AncestorsOf(stack, actionID string) ([]*domain.Feature, error) {
	entry, _, err := r.lookup(stack, actionID)
	if err != nil {
		return nil, err
	}
	chain := make([]*domain.Feature, len(entry.ancestors))
	for i, fe := range entry.ancestors {
		chain[i] = fe.feature
	}
	return chain, nil
}

// Stacks returns the sorted names of all registered stacks.
func (r *Registry) Stacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stacks))
	for name := range r.stacks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect returns a stable snapshot of the registered trees for
// introspection tooling.
func (r *Registry) Inspect() []domain.StackInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stacks))
	for name := range r.stacks {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]domain.StackInfo, 0, len(names))
	for _, name := range names {
		idx := r.stacks[name]
		info := domain.StackInfo{Stack: name}
		for _, root := range idx.roots {
			info.Features = append(info.Features, root.info())
		}
		infos = append(infos, info)
	}
	return infos
}

func (fe *featureEntry) info() domain.FeatureInfo {
	info := domain.FeatureInfo{
		ID:          fe.id,
		Description: fe.feature.Description,
	}
	for _, ae := range fe.actions {
		info.Actions = append(info.Actions, domain.ActionInfo{
			ID:          ae.id,
			Description: ae.action.Description,
			AllowGuests: ae.action.AllowGuests,
			HasPrepare:  ae.action.Prepare != nil,
		})
	}
	for _, child := range fe.children {
		info.Features = append(info.Features, child.info())
	}
	return info
}

func (r *Registry) lookup(stack, actionID string) (*actionEntry, *stackIndex, error) {
	if stack == "" {
		stack = domain.DefaultStack
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.stacks[stack]
	if !ok {
		return nil, nil, domain.ErrActionNotFound
	}
	entry, ok := idx.actions[actionID]
	if !ok {
		return nil, nil, domain.ErrActionNotFound
	}
	return entry, idx, nil
}
