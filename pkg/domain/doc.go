/*
Package domain contains the core domain models for the Palisade gate.

It defines the node taxonomy (Features and Actions), the per-call context,
availability checks, the response envelope, identifier derivation, and the
error taxonomy. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Feature: A grouping node holding child actions/features and constraints.
  - Action: An executable node with perform/prepare logic, constraints and
    availability checks.
  - Call: The per-invocation context (principal, subject, arguments).
  - Check: One availability assertion; checks run in order and fail fast.
  - Envelope: The uniform success/failure result returned from action logic.
  - StructuralError / Denial: registration-time vs. call-time failures.
*/
package domain
