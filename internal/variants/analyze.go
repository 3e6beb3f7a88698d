package variants

import (
	"fmt"
	"sort"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// jdSignalWeight balances the job-description side of a focus-area score
// against the library side.
const jdSignalWeight = 0.5

// AnalyzeFocusAreas inspects a match set's content distribution and
// returns the fixed focus-area vocabulary ranked by fit. The balanced
// area scores high when no single emphasis dominates.
func AnalyzeFocusAreas(matches []types.MatchResult, jdMetadata types.JDMetadata, jdComponents []types.Component) (*types.FocusAreaAnalysis, error) {
	if len(matches) == 0 {
		return nil, &ValidationError{Field: "matches", Message: "at least one match is required"}
	}
	if len(jdComponents) == 0 {
		return nil, &ValidationError{Field: "jdComponents", Message: "at least one JD component is required"}
	}

	scores := make(map[types.FocusArea]float64, len(types.FocusAreas))
	for _, area := range types.FocusAreas {
		if area == types.FocusBalanced {
			continue
		}
		cvSignal := averageCVSignal(area, matches)
		jdSignal := averageJDSignal(area, jdComponents)
		scores[area] = (1-jdSignalWeight)*cvSignal + jdSignalWeight*jdSignal
	}
	// A senior posting expects leadership even when its text is terse.
	scores[types.FocusLeadership] = clampUnit(scores[types.FocusLeadership] + leadershipSeniorityBoost(jdMetadata))

	// Balanced scores by evenness: a flat distribution across the other
	// areas means no emphasis stands out.
	scores[types.FocusBalanced] = 1 - spread(scores)

	ranked := make([]types.FocusAreaScore, 0, len(types.FocusAreas))
	for _, area := range types.FocusAreas {
		ranked = append(ranked, types.FocusAreaScore{
			FocusArea: area,
			Score:     scores[area],
			Rationale: rationale(area, scores[area]),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return &types.FocusAreaAnalysis{Ranked: ranked}, nil
}

// averageCVSignal is the mean signal strength over matched library
// components.
func averageCVSignal(area types.FocusArea, matches []types.MatchResult) float64 {
	sum := 0.0
	count := 0
	for _, match := range matches {
		if match.CVComponent == nil {
			continue
		}
		sum += signalStrength(area, *match.CVComponent)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// averageJDSignal is the mean signal strength over the job description's
// own requirement components; a posting asking for leadership pushes the
// leadership variant up even when the library is thin on it.
func averageJDSignal(area types.FocusArea, jdComponents []types.Component) float64 {
	sum := 0.0
	for _, component := range jdComponents {
		sum += signalStrength(area, component)
	}
	return sum / float64(len(jdComponents))
}

// spread is the gap between the strongest and weakest emphasized area.
func spread(scores map[types.FocusArea]float64) float64 {
	first := true
	var lowest, highest float64
	for area, score := range scores {
		if area == types.FocusBalanced {
			continue
		}
		if first {
			lowest, highest = score, score
			first = false
			continue
		}
		if score < lowest {
			lowest = score
		}
		if score > highest {
			highest = score
		}
	}
	return clampUnit(highest - lowest)
}

func rationale(area types.FocusArea, score float64) string {
	switch area {
	case types.FocusBalanced:
		return fmt.Sprintf("Emphasis is distributed evenly across the match set (evenness %.2f).", score)
	default:
		return fmt.Sprintf("Matched content and job requirements show %.0f%% alignment with a %s emphasis.", score*100, area)
	}
}
