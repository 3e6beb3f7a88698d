package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// maxReasoningTerms bounds how many shared or missing terms a reasoning
// string names.
const maxReasoningTerms = 4

// stopwords excluded from term overlap so reasoning names substantive
// attributes, not filler.
var stopwords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "using": true,
	"our": true, "you": true, "your": true, "will": true, "have": true,
	"are": true, "this": true, "that": true, "from": true, "into": true,
	"experience": true, "knowledge": true, "ability": true, "strong": true,
	"years": true, "working": true, "skills": true, "plus": true,
}

// acceptedReasoning explains an accepted match by naming the terms the
// requirement and component share and the requirement terms left
// uncovered.
func acceptedReasoning(requirement types.Component, match repository.Match) string {
	reqTerms := salientTerms(requirement)
	cvTerms := salientTerms(match.Component)

	shared, missing := partitionTerms(reqTerms, cvTerms)

	label := componentLabel(match.Component)
	var sb strings.Builder
	if len(shared) > 0 {
		fmt.Fprintf(&sb, "Shares %s with %s", strings.Join(capTerms(shared), ", "), label)
	} else {
		fmt.Fprintf(&sb, "Semantically close to %s", label)
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "; does not mention %s", strings.Join(capTerms(missing), ", "))
	}
	sb.WriteString(".")
	return sb.String()
}

// rejectedReasoning explains why the closest candidate was not attached.
func rejectedReasoning(requirement types.Component, best repository.Match) string {
	reqTerms := salientTerms(requirement)
	cvTerms := salientTerms(best.Component)
	_, missing := partitionTerms(reqTerms, cvTerms)

	msg := fmt.Sprintf("No component acceptably covers %q; the closest, %s, scored below the acceptance threshold",
		requirement.Title, componentLabel(best.Component))
	if len(missing) > 0 {
		msg += fmt.Sprintf(" and lacks %s", strings.Join(capTerms(missing), ", "))
	}
	return msg + "."
}

// noCandidateReasoning covers an empty retrieval result.
func noCandidateReasoning(requirement types.Component) string {
	return fmt.Sprintf("No component in the library relates to %q; the library returned no candidates for it.",
		requirement.Title)
}

// salientTerms extracts the distinctive lowercase terms of a component's
// text for overlap comparison.
func salientTerms(component types.Component) map[string]bool {
	terms := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(component.EmbeddingText()), isTermBoundary) {
		if len(field) < 3 || stopwords[field] {
			continue
		}
		terms[field] = true
	}
	return terms
}

func isTermBoundary(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#')
}

// partitionTerms splits requirement terms into those shared with the
// component and those missing from it, both sorted for determinism.
func partitionTerms(reqTerms, cvTerms map[string]bool) (shared, missing []string) {
	for term := range reqTerms {
		if cvTerms[term] {
			shared = append(shared, term)
		} else {
			missing = append(missing, term)
		}
	}
	sort.Strings(shared)
	sort.Strings(missing)
	return shared, missing
}

func capTerms(terms []string) []string {
	if len(terms) > maxReasoningTerms {
		return terms[:maxReasoningTerms]
	}
	return terms
}

// componentLabel renders a component reference for reasoning strings.
func componentLabel(component types.Component) string {
	if component.Organization != "" {
		return fmt.Sprintf("%q (%s, %s)", component.Title, component.Type, component.Organization)
	}
	return fmt.Sprintf("%q (%s)", component.Title, component.Type)
}
