// Package repository provides nearest-neighbor retrieval over a user's
// stored components, with Qdrant and PostgreSQL backed adapters.
package repository

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// Match is one retrieved component together with its similarity against
// the query vector.
type Match struct {
	Component  types.Component
	Similarity float64
}

// ComponentRepository retrieves the nearest stored components of a user
// for a query vector. An empty result set is valid data, not an error.
type ComponentRepository interface {
	SimilaritySearch(ctx context.Context, userID string, vector []float32, topK int) ([]Match, error)
}

// Error represents a failure propagated from a repository backend.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repository %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("repository %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
