package domain

import (
	"context"
	"time"
)

// DecisionEvent records the outcome of a full check chain run ahead of a
// dispatch attempt.
type DecisionEvent struct {
	Stack   string
	Action  string
	Allowed bool
	// Stage and Reason are set when Allowed is false.
	Stage  Stage
	Reason string
}

// PerformEvent records a completed dispatch of action logic.
type PerformEvent struct {
	Stack    string
	Action   string
	Duration time.Duration
	// Successful mirrors the returned envelope's flag. False when the
	// logic returned an error.
	Successful bool
	Err        error
}

// GateHooks defines optional callbacks for gate observability. Nil hooks
// are skipped. Hooks run synchronously on the calling goroutine and must
// be safe for concurrent use.
type GateHooks struct {
	OnDecision func(context.Context, *DecisionEvent)
	OnPerform  func(context.Context, *PerformEvent)
}
