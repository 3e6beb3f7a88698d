package types

import "time"

// CategoryScore is one entry of the per-category breakdown.
type CategoryScore struct {
	Category ComponentType `json:"category"`
	Score    float64       `json:"score"`
	Matches  int           `json:"matches"`
}

// RankedComponent is a matched component together with its raw similarity
// against the job description category it matched under.
type RankedComponent struct {
	Component  Component `json:"component"`
	Similarity float64   `json:"similarity"`
}

// ScoreMetadata carries timing and diagnostic information for one
// optimized match score computation.
type ScoreMetadata struct {
	ComputedAt           time.Time     `json:"computed_at"`
	Duration             time.Duration `json:"duration"`
	CategoriesEvaluated  int           `json:"categories_evaluated"`
	ComponentsConsidered int           `json:"components_considered"`
}

// OptimizedMatchScore is the aggregate result for one (user, job
// description) pair.
type OptimizedMatchScore struct {
	Score                float64                             `json:"score"`
	Breakdown            []CategoryScore                     `json:"breakdown"`
	MissingSkills        []string                            `json:"missing_skills"`
	Suggestions          []string                            `json:"suggestions"`
	TopMatchedComponents map[ComponentType][]RankedComponent `json:"top_matched_components"`
	Metadata             ScoreMetadata                       `json:"metadata"`
}

// BreakdownFor returns the breakdown entry for the given category, or a
// zero-valued entry if the category is absent.
func (s *OptimizedMatchScore) BreakdownFor(category ComponentType) CategoryScore {
	for _, entry := range s.Breakdown {
		if entry.Category == category {
			return entry
		}
	}
	return CategoryScore{Category: category}
}
