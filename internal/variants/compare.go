package variants

import "github.com/jonathan/cv-match-engine/internal/types"

// CompareVariants picks the highest-scoring variant as recommended. Ties
// prefer balanced, then input order. The comparison array parallels the
// input and carries each variant's delta from the recommendation.
func CompareVariants(variants []types.CVVariant) (*types.VariantRecommendation, error) {
	if len(variants) == 0 {
		return nil, &ValidationError{Field: "variants", Message: "at least one variant is required"}
	}

	recommended := variants[0]
	for _, variant := range variants[1:] {
		if variant.Score > recommended.Score {
			recommended = variant
			continue
		}
		if variant.Score == recommended.Score &&
			variant.FocusArea == types.FocusBalanced &&
			recommended.FocusArea != types.FocusBalanced {
			recommended = variant
		}
	}

	comparison := make([]types.VariantComparison, 0, len(variants))
	for _, variant := range variants {
		comparison = append(comparison, types.VariantComparison{
			FocusArea: variant.FocusArea,
			Score:     variant.Score,
			Delta:     variant.Score - recommended.Score,
		})
	}

	return &types.VariantRecommendation{
		Recommended: recommended,
		Comparison:  comparison,
	}, nil
}
