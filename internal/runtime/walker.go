package runtime

import (
	"github.com/aretw0/palisade/pkg/domain"
)

// walker performs the recursive validation walk of one declared tree into
// a staging index. It runs under the registry's write lock.
type walker struct {
	stack string
	idx   *stackIndex
}

// feature validates f and records it together with its subtree. segments
// holds the namespace path between the stack root and f, used for
// identifier derivation.
func (w *walker) feature(f *domain.Feature, segments []string, isRoot bool, ancestors []*featureEntry) (*featureEntry, error) {
	if f == nil {
		return nil, w.structural(domain.CodeNilChild, "", "nil feature child")
	}
	// Only the root of a tree may declare the stack it registers under.
	if !isRoot && f.Stack != "" && f.Stack != w.stack {
		return nil, w.structural(domain.CodeStackConflict, f.ID,
			"nested feature declares stack "+f.Stack+", parent stack is "+w.stack)
	}

	id, err := w.identify(f.ID, f.Name, segments)
	if err != nil {
		return nil, err
	}
	if len(f.Actions) == 0 && len(f.Features) == 0 {
		return nil, w.structural(domain.CodeEmptyFeature, id, "feature declares no children")
	}

	entry := &featureEntry{id: id, feature: f}
	w.idx.features[id] = entry

	chain := append(append([]*featureEntry(nil), ancestors...), entry)
	childSegments := segments
	if !isRoot {
		childSegments = append(append([]string(nil), segments...), segmentName(f))
	}

	for _, a := range f.Actions {
		ae, err := w.action(a, childSegments, chain)
		if err != nil {
			return nil, err
		}
		entry.actions = append(entry.actions, ae)
	}
	for _, child := range f.Features {
		ce, err := w.feature(child, childSegments, false, chain)
		if err != nil {
			return nil, err
		}
		entry.children = append(entry.children, ce)
	}
	return entry, nil
}

func (w *walker) action(a *domain.Action, segments []string, ancestors []*featureEntry) (*actionEntry, error) {
	if a == nil {
		return nil, w.structural(domain.CodeNilChild, "", "nil action child")
	}
	id, err := w.identify(a.ID, a.Name, segments)
	if err != nil {
		return nil, err
	}

	entry := &actionEntry{id: id, stack: w.stack, action: a, ancestors: ancestors}
	w.idx.actions[id] = entry
	return entry, nil
}

// identify resolves the explicit or derived identifier and enforces the
// uniqueness and separator invariants.
func (w *walker) identify(explicit, name string, segments []string) (string, error) {
	id := explicit
	if id == "" {
		id = domain.DeriveIdentifier(segments, name)
	}
	if !domain.ValidIdentifier(id) {
		return "", w.structural(domain.CodeInvalidIdentifier, id,
			"identifier must be non-empty and must not contain "+domain.Separator)
	}
	if _, taken := w.idx.features[id]; taken {
		return "", w.structural(domain.CodeDuplicateIdentifier, id, "identifier already registered in stack")
	}
	if _, taken := w.idx.actions[id]; taken {
		return "", w.structural(domain.CodeDuplicateIdentifier, id, "identifier already registered in stack")
	}
	return id, nil
}

func segmentName(f *domain.Feature) string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

func (w *walker) structural(code domain.StructuralCode, id, detail string) error {
	return &domain.StructuralError{Code: code, Stack: w.stack, Identifier: id, Detail: detail}
}
