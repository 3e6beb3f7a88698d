package decomposer

import "fmt"

// DecompositionError represents a failure to extract structured
// requirements from a job description.
type DecompositionError struct {
	Message string
	Cause   error
}

func (e *DecompositionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decomposition failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decomposition failed: %s", e.Message)
}

func (e *DecompositionError) Unwrap() error {
	return e.Cause
}
