package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint derives the deterministic cache key for a
// (user, job description, topK) triple. The job description is normalized
// textually, not semantically: trimmed, whitespace-collapsed, case-folded.
func Fingerprint(userID, jobDescription string, topK int) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeJobDescription(jobDescription)))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d", topK)
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeJobDescription trims, collapses whitespace runs, and case-folds
// a job description so cosmetically different copies share a cache entry.
func NormalizeJobDescription(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
