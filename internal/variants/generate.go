package variants

import (
	"sort"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// emphasisBonus is the maximum multiplier a fully aligned component gains
// under a non-balanced focus area.
const emphasisBonus = 0.5

// GenerateVariants re-ranks and re-weights an existing match set into one
// variant per requested focus area. The posting's seniority level feeds
// the leadership emphasis. No embedding or retrieval work is performed;
// variant scores are deterministic for identical inputs.
func GenerateVariants(matches []types.MatchResult, jdMetadata types.JDMetadata, focusAreas []types.FocusArea) ([]types.CVVariant, error) {
	if len(matches) == 0 {
		return nil, &ValidationError{Field: "matches", Message: "at least one match is required"}
	}
	if len(focusAreas) == 0 {
		return nil, &ValidationError{Field: "focusAreas", Message: "at least one focus area is required"}
	}
	for _, area := range focusAreas {
		if !area.IsValid() {
			return nil, &ValidationError{Field: "focusAreas", Message: "unknown focus area " + string(area)}
		}
	}

	variants := make([]types.CVVariant, 0, len(focusAreas))
	for _, area := range focusAreas {
		variants = append(variants, buildVariant(area, matches, jdMetadata))
	}
	return variants, nil
}

// buildVariant weights every matched component under the focus area and
// orders the variant content by descending weight.
func buildVariant(area types.FocusArea, matches []types.MatchResult, jdMetadata types.JDMetadata) types.CVVariant {
	entries := make([]types.VariantEntry, 0, len(matches))
	for _, match := range matches {
		if match.CVComponent == nil {
			continue
		}
		component := *match.CVComponent
		weight := match.Score / 100
		if area != types.FocusBalanced {
			signal := signalStrength(area, component)
			if area == types.FocusLeadership {
				signal = clampUnit(signal + leadershipSeniorityBoost(jdMetadata))
			}
			weight *= 1 + emphasisBonus*signal
		}
		entries = append(entries, types.VariantEntry{
			Component: component,
			Weight:    weight,
		})
	}

	// Descending by weight; dedupe key as deterministic tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Component.DedupeKey() < entries[j].Component.DedupeKey()
	})

	return types.CVVariant{
		FocusArea: area,
		Content:   entries,
		Score:     variantScore(entries),
	}
}

// variantScore is the mean entry weight on the 0-100 scale. It is
// comparable only within one recommendation run.
func variantScore(entries []types.VariantEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, entry := range entries {
		sum += entry.Weight
	}
	return sum / float64(len(entries)) * 100
}
