package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refStoreFunc adapts a func to the referenceStore interface
type refStoreFunc func(ctx context.Context, ref string) (bool, error)

func (f refStoreFunc) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	return f(ctx, ref)
}

func TestNewReferenceFormat(t *testing.T) {
	gen := NewReferenceGenerator(refStoreFunc(func(ctx context.Context, ref string) (bool, error) {
		return false, nil
	}))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := gen.NewReference(context.Background())
		require.NoError(t, err)
		assert.Len(t, ref, 8)
		for _, c := range ref {
			assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected character %q in %s", c, ref)
		}
		seen[ref] = true
	}
	// With 36^8 candidates, 100 draws colliding would mean broken randomness.
	assert.Len(t, seen, 100)
}

func TestNewReferenceRetriesOnCollision(t *testing.T) {
	calls := 0
	gen := NewReferenceGenerator(refStoreFunc(func(ctx context.Context, ref string) (bool, error) {
		calls++
		return calls <= 3, nil // first three candidates are taken
	}))

	ref, err := gen.NewReference(context.Background())
	require.NoError(t, err)
	assert.Len(t, ref, 8)
	assert.Equal(t, 4, calls)
}

func TestNewReferenceExhaustsRetryBudget(t *testing.T) {
	calls := 0
	gen := NewReferenceGenerator(refStoreFunc(func(ctx context.Context, ref string) (bool, error) {
		calls++
		return true, nil // every candidate is taken
	}))

	_, err := gen.NewReference(context.Background())
	assert.ErrorIs(t, err, ErrReferenceExhausted)
	assert.Equal(t, maxReferenceAttempts, calls, "loop must stop at the retry ceiling")
}
