package domain

import (
	"errors"
	"fmt"
)

// ErrActionNotFound is returned when an action identifier cannot be
// resolved within a stack.
var ErrActionNotFound = errors.New("action not found")

// ErrNoPerform is returned when an action without perform logic is
// dispatched.
var ErrNoPerform = errors.New("action has no perform logic")

// ErrNoPrepare is returned when Prepare is invoked on an action that
// declares no prepare logic.
var ErrNoPrepare = errors.New("action has no prepare logic")

// StructuralCode classifies registration-time defects.
type StructuralCode string

const (
	// CodeEmptyFeature marks a feature declaring no children.
	CodeEmptyFeature StructuralCode = "empty_feature"
	// CodeDuplicateIdentifier marks an identifier collision within a stack.
	CodeDuplicateIdentifier StructuralCode = "duplicate_identifier"
	// CodeInvalidIdentifier marks an empty identifier or one containing
	// the separator character.
	CodeInvalidIdentifier StructuralCode = "invalid_identifier"
	// CodeStackConflict marks a nested feature declaring its own stack.
	CodeStackConflict StructuralCode = "stack_conflict"
	// CodeNilChild marks a nil entry in a feature's child lists.
	CodeNilChild StructuralCode = "nil_child"
)

// StructuralError reports a defect in a declared gate tree. It is raised
// during registration, aborts the offending tree wholesale, and is never
// recovered at call time: a partially valid registry must not serve
// traffic.
type StructuralError struct {
	Code       StructuralCode
	Stack      string
	Identifier string
	Detail     string
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("structural error (%s) in stack %q", e.Code, e.Stack)
	if e.Identifier != "" {
		msg += fmt.Sprintf(": node %q", e.Identifier)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Stage names the check phase a denial originated from.
type Stage string

const (
	// StageConstraint covers environment prerequisite failures.
	StageConstraint Stage = "constraint"
	// StageAvailability covers per-call authorization failures.
	StageAvailability Stage = "availability"
)

// ReasonUnauthenticated is the denial reason used when a guest calls an
// action that requires an authenticated principal.
const ReasonUnauthenticated = "authentication required"

// Denial is the structured refusal returned by a proxy when a check
// fails. It is a recoverable, expected condition: callers branch on it
// (typically rendering an "unavailable" state) rather than treating it as
// a fault.
type Denial struct {
	// Stage tells which check phase refused the call.
	Stage Stage
	// Stack and Action identify the gated operation.
	Stack  string
	Action string
	// Node is the identifier of the failing node for constraint denials
	// (an ancestor feature or the action itself).
	Node string
	// Reason is a human-readable message suitable for display or logging.
	Reason string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s denied (%s): %s", NodeKey(d.Stack, d.Action), d.Stage, d.Reason)
}

// IsDenied reports whether err is (or wraps) a gate denial.
func IsDenied(err error) bool {
	var d *Denial
	return errors.As(err, &d)
}

// AsDenial extracts the denial from err, or nil when err is not one.
func AsDenial(err error) *Denial {
	var d *Denial
	if errors.As(err, &d) {
		return d
	}
	return nil
}
