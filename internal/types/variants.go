package types

// FocusArea names an emphasis used to re-rank the same underlying matches
// into different resume variants.
type FocusArea string

// The fixed focus-area vocabulary
const (
	// FocusTechnical emphasizes technical depth and tooling
	FocusTechnical FocusArea = "technical"
	// FocusLeadership emphasizes mentoring and management
	FocusLeadership FocusArea = "leadership"
	// FocusImpact emphasizes quantifiable outcomes
	FocusImpact FocusArea = "impact"
	// FocusInnovation emphasizes novel work and initiative
	FocusInnovation FocusArea = "innovation"
	// FocusBalanced applies no particular emphasis
	FocusBalanced FocusArea = "balanced"
)

// FocusAreas lists the full vocabulary in presentation order.
var FocusAreas = []FocusArea{
	FocusTechnical,
	FocusLeadership,
	FocusImpact,
	FocusInnovation,
	FocusBalanced,
}

// IsValid reports whether f is part of the fixed vocabulary.
func (f FocusArea) IsValid() bool {
	for _, known := range FocusAreas {
		if f == known {
			return true
		}
	}
	return false
}

// FocusAreaScore is one ranked suggestion produced by focus-area analysis.
type FocusAreaScore struct {
	FocusArea FocusArea `json:"focus_area"`
	Score     float64   `json:"score"`
	Rationale string    `json:"rationale"`
}

// FocusAreaAnalysis ranks suggested focus areas for a match set.
type FocusAreaAnalysis struct {
	Ranked []FocusAreaScore `json:"ranked"`
}

// VariantEntry is one component placed in a variant, carrying the weight
// that ordered it under the variant's focus area.
type VariantEntry struct {
	Component Component `json:"component"`
	Weight    float64   `json:"weight"`
}

// CVVariant is one re-weighted rendering of a match set under a focus
// area. Score is comparable only within the same recommendation run.
type CVVariant struct {
	FocusArea FocusArea      `json:"focus_area"`
	Content   []VariantEntry `json:"content"`
	Score     float64        `json:"score"`
}

// VariantComparison summarizes one variant against the recommended one.
type VariantComparison struct {
	FocusArea FocusArea `json:"focus_area"`
	Score     float64   `json:"score"`
	Delta     float64   `json:"delta"`
}

// VariantRecommendation is the result of comparing a set of variants.
type VariantRecommendation struct {
	Recommended CVVariant           `json:"recommended"`
	Comparison  []VariantComparison `json:"comparison"`
}
