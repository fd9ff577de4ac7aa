package service

import (
	"context"
	"crypto/rand"
	"fmt"
)

const (
	referenceLength  = 8
	referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxReferenceAttempts bounds the verify-then-claim loop. At 36^8
	// candidates, hitting this ceiling means something is wrong with the
	// randomness source, not bad luck.
	maxReferenceAttempts = 20
)

// referenceStore is the slice of the store the generator needs.
type referenceStore interface {
	ReferenceExists(ctx context.Context, ref string) (bool, error)
}

// ReferenceGenerator mints 8-character booking references from uppercase
// letters and digits. A candidate is checked against the reservation store
// before being handed out; the check and the eventual insert are separated
// in time, so the store's unique constraint on booking_reference remains
// the authoritative guard.
type ReferenceGenerator struct {
	store referenceStore
}

// NewReferenceGenerator creates a generator backed by the given store
func NewReferenceGenerator(store referenceStore) *ReferenceGenerator {
	return &ReferenceGenerator{store: store}
}

// NewReference returns a booking reference not currently present in the
// store. Fails with ErrReferenceExhausted after maxReferenceAttempts.
func (g *ReferenceGenerator) NewReference(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := randomReference()
		if err != nil {
			return "", fmt.Errorf("failed to generate reference: %w", err)
		}
		exists, err := g.store.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", ErrReferenceExhausted
}

func randomReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, referenceLength)
	for i, b := range buf {
		out[i] = referenceCharset[int(b)%len(referenceCharset)]
	}
	return string(out), nil
}
