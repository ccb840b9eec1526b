package ports

import (
	"context"
	"testing"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAuthorizerContract runs a suite of tests to verify that a
// GrantingAuthorizer implementation adheres to the defined interface
// contract.
func RunAuthorizerContract(t *testing.T, auth GrantingAuthorizer) {
	ctx := context.Background()
	alice := &domain.Principal{ID: "alice"}
	bob := &domain.Principal{ID: "bob"}

	t.Run("Ungranted Capability Is Denied", func(t *testing.T) {
		allowed, err := auth.CheckCapability(ctx, alice, "publish", "post-1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Subject Grant", func(t *testing.T) {
		require.NoError(t, auth.Grant(ctx, "alice", "publish", "post-1"))

		allowed, err := auth.CheckCapability(ctx, alice, "publish", "post-1")
		require.NoError(t, err)
		assert.True(t, allowed)

		// Different subject, same capability.
		allowed, err = auth.CheckCapability(ctx, alice, "publish", "post-2")
		require.NoError(t, err)
		assert.False(t, allowed)

		// Different principal entirely.
		allowed, err = auth.CheckCapability(ctx, bob, "publish", "post-1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Wildcard Grant", func(t *testing.T) {
		require.NoError(t, auth.Grant(ctx, "bob", "moderate"))

		allowed, err := auth.CheckCapability(ctx, bob, "moderate", "anything")
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = auth.CheckCapability(ctx, bob, "moderate", nil)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Revoke Subject", func(t *testing.T) {
		require.NoError(t, auth.Grant(ctx, "alice", "edit", "doc-1", "doc-2"))
		require.NoError(t, auth.Revoke(ctx, "alice", "edit", "doc-1"))

		allowed, err := auth.CheckCapability(ctx, alice, "edit", "doc-1")
		require.NoError(t, err)
		assert.False(t, allowed)

		allowed, err = auth.CheckCapability(ctx, alice, "edit", "doc-2")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Revoke All", func(t *testing.T) {
		require.NoError(t, auth.Grant(ctx, "bob", "delete"))
		require.NoError(t, auth.Revoke(ctx, "bob", "delete"))

		allowed, err := auth.CheckCapability(ctx, bob, "delete", "x")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Guest Is Denied", func(t *testing.T) {
		require.NoError(t, auth.Grant(ctx, "alice", "view"))

		allowed, err := auth.CheckCapability(ctx, nil, "view", "post-1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
