package embedding

import "fmt"

// EmbeddingError represents a failure to produce an embedding, either
// because the input was empty or the provider was unreachable.
type EmbeddingError struct {
	Message string
	Cause   error
}

func (e *EmbeddingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding failed: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// DimensionMismatchError represents a similarity computation over vectors
// of unequal length.
type DimensionMismatchError struct {
	LenA int
	LenB int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %d != %d", e.LenA, e.LenB)
}
