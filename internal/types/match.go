package types

// MatchQuality is an ordinal label derived monotonically from a match score.
type MatchQuality string

// Match quality bands, ordered from best to worst
const (
	// QualityExcellent indicates a near-perfect match
	QualityExcellent MatchQuality = "excellent"
	// QualityGood indicates a strong match
	QualityGood MatchQuality = "good"
	// QualityFair indicates a partial match
	QualityFair MatchQuality = "fair"
	// QualityWeak indicates a marginal match
	QualityWeak MatchQuality = "weak"
	// QualityNone indicates no meaningful match
	QualityNone MatchQuality = "none"
)

// qualityRank maps each band to its ordinal position (higher is better).
var qualityRank = map[MatchQuality]int{
	QualityNone:      0,
	QualityWeak:      1,
	QualityFair:      2,
	QualityGood:      3,
	QualityExcellent: 4,
}

// Rank returns the ordinal position of the quality band (higher is better).
// Unknown bands rank below none.
func (q MatchQuality) Rank() int {
	if rank, ok := qualityRank[q]; ok {
		return rank
	}
	return -1
}

// MatchResult pairs one job-description requirement component with at most
// one CV component. CVComponent is nil when no acceptable match was found,
// in which case Quality is weak or none.
type MatchResult struct {
	JDComponent Component    `json:"jd_component"`
	CVComponent *Component   `json:"cv_component,omitempty"`
	Score       float64      `json:"score"`
	Quality     MatchQuality `json:"match_quality"`
	Reasoning   string       `json:"reasoning"`
}

// JDMatchingResults is the full output of matching a job description
// against a user's component library.
type JDMatchingResults struct {
	JDMetadata   JDMetadata    `json:"jd_metadata"`
	JDComponents []Component   `json:"jd_components"`
	Matches      []MatchResult `json:"matches"`
	OverallScore float64       `json:"overall_score"`
}
