/*
Package ports defines the driven ports (interfaces) for the Palisade gate.

These interfaces decouple the core check chain from external
implementations, allowing the gate to delegate capability decisions to any
authorization backend.

# Key Interfaces

  - Authorizer: Answers "does this principal hold this capability over this
    subject?" for the capability availability check.
  - GrantingAuthorizer: A mutable Authorizer that records grants; adapter
    tests verify it through the shared contract suite.
*/
package ports
