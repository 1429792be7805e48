// Package repository holds the per-session view of candidates that operators
// have open. It is a cache in front of the HR service, never a system of
// record: losing it only means candidates are reloaded.
package repository

import (
	"context"

	"github.com/okian/hireflow/internal/domain/model"
)

// Store provides read/write access to session candidates.
type Store interface {
	// Get returns the candidate with id. Returns ErrNotFound if it is not
	// in the session.
	Get(ctx context.Context, id string) (model.Candidate, error)

	// Put stores c, replacing any previous value for c.ID.
	Put(ctx context.Context, c model.Candidate) error

	// Delete drops the candidate with id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of candidates held.
	Count(ctx context.Context) (int, error)
}
