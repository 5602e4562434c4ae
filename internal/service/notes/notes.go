// Package notes implements the two inventory movement documents: sales
// notes debit stock when processed, receiving notes credit it. Both run
// the same state machine and differ in stock direction and numbering
// prefix.
package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Numbering prefixes, one counter per prefix per calendar year.
const (
	salesPrefix     = "NV"
	receivingPrefix = "NI"
)

// Sequencer hands out the next value of a named monotonic counter.
type Sequencer interface {
	NextSequence(ctx context.Context, key string) (int, error)
}

// ProductSource supplies catalog snapshots for existence and availability
// checks.
type ProductSource interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
}

// nextNumber allocates a document number of the form
// <PREFIX>-<year>-<4-digit-seq>, scoped to the current calendar year.
func nextNumber(ctx context.Context, seq Sequencer, prefix string, now time.Time) (string, error) {
	year := now.Year()
	n, err := seq.NextSequence(ctx, fmt.Sprintf("%s-%d", prefix, year))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n), nil
}

// checkTransition enforces the shared state machine: pending→processed and
// pending→cancelled only; processed and cancelled are terminal.
func checkTransition(from, to models.NoteStatus) error {
	if !from.CanTransitionTo(to) {
		return &models.InvalidTransitionError{From: from, To: to}
	}
	return nil
}
