package runtime

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/aretw0/palisade/pkg/ports"
)

// availabilityEvaluator runs the per-call authorization checks for one
// action. A fresh evaluator is constructed for every call so no mutable
// state is shared between concurrent callers; results are never cached.
type availabilityEvaluator struct {
	authorizer ports.Authorizer
	call       *domain.Call
}

func newAvailabilityEvaluator(authorizer ports.Authorizer, call *domain.Call) *availabilityEvaluator {
	if call == nil {
		call = &domain.Call{}
	}
	return &availabilityEvaluator{authorizer: authorizer, call: call}
}

// evaluate returns nil when the call is authorized, or the denial from
// the first failing check. Checks run in declaration order and evaluation
// stops at the first failure, keeping the user-facing reason focused.
func (e *availabilityEvaluator) evaluate(ctx context.Context, entry *actionEntry) *domain.Denial {
	action := entry.action

	// Guest guard before any custom check: actions require an
	// authenticated principal unless they opt in to guest execution.
	if !action.AllowGuests && !e.call.Authenticated() {
		return e.denial(entry, domain.ReasonUnauthenticated)
	}

	for _, check := range action.Availability {
		ok, reason := e.assert(ctx, check)
		if !ok {
			return e.denial(entry, reason)
		}
	}
	return nil
}

func (e *availabilityEvaluator) denial(entry *actionEntry, reason string) *domain.Denial {
	return &domain.Denial{
		Stage:  domain.StageAvailability,
		Stack:  entry.stack,
		Action: entry.id,
		Reason: reason,
	}
}

func (e *availabilityEvaluator) assert(ctx context.Context, check domain.Check) (bool, string) {
	ok := false
	switch check.Kind {
	case domain.CheckTruthy:
		ok = truthy(e.extract(check.Value))
	case domain.CheckFalsy:
		ok = !truthy(e.extract(check.Value))
	case domain.CheckEqual:
		ok = reflect.DeepEqual(e.extract(check.Value), e.extract(check.Other))
	case domain.CheckNotEqual:
		ok = !reflect.DeepEqual(e.extract(check.Value), e.extract(check.Other))
	case domain.CheckNil:
		ok = isNil(e.extract(check.Value))
	case domain.CheckNotNil:
		ok = !isNil(e.extract(check.Value))
	case domain.CheckEmpty:
		ok = isEmpty(e.extract(check.Value))
	case domain.CheckNotEmpty:
		ok = !isEmpty(e.extract(check.Value))
	case domain.CheckCapability:
		if e.authorizer == nil {
			return false, failMessage(check, "no authorization backend configured")
		}
		allowed, err := e.authorizer.CheckCapability(ctx, e.call.Principal, check.Capability, e.extract(check.Subject))
		if err != nil || !allowed {
			return false, failMessage(check, fmt.Sprintf("not allowed to %s", check.Capability))
		}
		return true, ""
	}
	if !ok {
		return false, failMessage(check, "requirement not met")
	}
	return true, ""
}

func (e *availabilityEvaluator) extract(v domain.Valuer) any {
	if v == nil {
		return nil
	}
	return v(e.call)
}

func failMessage(check domain.Check, fallback string) string {
	if check.Message != "" {
		return check.Message
	}
	return fallback
}

// truthy mirrors the classic predicate semantics: only nil and false are
// falsy, everything else passes.
func truthy(v any) bool {
	if isNil(v) {
		return false
	}
	b, isBool := v.(bool)
	return !isBool || b
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// isEmpty reports whether v is a collection-like value with no elements.
// Nil counts as empty; scalars count as non-empty.
func isEmpty(v any) bool {
	if isNil(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		return rv.Len() == 0
	default:
		return false
	}
}
