// Package embedding converts text into fixed-length vectors and provides
// the similarity arithmetic used throughout the match engine.
package embedding

import (
	"context"
	"math"
)

// Provider is an abstraction over text-to-vector providers.
// Implementations perform no retries; retry policy belongs to the caller.
type Provider interface {
	// Embed converts a single text into a vector. It fails with an
	// *EmbeddingError if the text is empty or the provider is unreachable.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch converts a batch of texts in one call, preserving input
	// order and length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CosineSimilarity returns the directional closeness of two vectors in
// [-1, 1]. It fails with a *DimensionMismatchError when the vectors have
// unequal length. A zero vector yields similarity 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Guard against floating point drift outside [-1, 1]
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}

	return sim, nil
}
