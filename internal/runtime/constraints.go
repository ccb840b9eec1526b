package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/palisade/pkg/domain"
)

// constraintVerdict evaluates the environment prerequisites for an
// action: every ancestor feature's constraints AND the action's own.
// Evaluation short-circuits at the first failing node; ancestors are
// checked first only for efficiency, the overall verdict is
// order-independent.
//
// Each node's verdict is cached against its identifier until the stack is
// reset. Environment probes (binaries on the path, loaded extensions)
// rarely change within a process lifetime, so the cache amortizes repeated
// probes across calls.
func constraintVerdict(ctx context.Context, idx *stackIndex, entry *actionEntry) *domain.Denial {
	for _, fe := range entry.ancestors {
		if !idx.nodeSatisfied(ctx, fe.id, fe.feature) {
			return &domain.Denial{
				Stage:  domain.StageConstraint,
				Stack:  entry.stack,
				Action: entry.id,
				Node:   fe.id,
				Reason: fmt.Sprintf("feature %q is not available in this environment", fe.id),
			}
		}
	}
	if !idx.nodeSatisfied(ctx, entry.id, entry.action) {
		return &domain.Denial{
			Stage:  domain.StageConstraint,
			Stack:  entry.stack,
			Action: entry.id,
			Node:   entry.id,
			Reason: fmt.Sprintf("action %q is not available in this environment", entry.id),
		}
	}
	return nil
}

// nodeSatisfied returns the cached constraint verdict for one node,
// probing on first use. LoadOrStore keeps concurrent first evaluations
// consistent without a global lock.
func (idx *stackIndex) nodeSatisfied(ctx context.Context, id string, node domain.Constrained) bool {
	if v, ok := idx.cache.Load(id); ok {
		return v.(bool)
	}
	satisfied := true
	for _, c := range node.ConstraintList() {
		if c.Probe == nil {
			continue
		}
		if !c.Probe(ctx) {
			satisfied = false
			break
		}
	}
	actual, _ := idx.cache.LoadOrStore(id, satisfied)
	return actual.(bool)
}
