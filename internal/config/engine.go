// Package config provides configuration loading and validation for the
// match engine.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// weightSumTolerance is the permitted deviation of the category weight sum
// from 1.0.
const weightSumTolerance = 1e-6

// CategoryWeights combines the four category breakdowns into the overall
// score. The weights must sum to 1.
type CategoryWeights struct {
	Experience float64 `json:"experience"`
	Skills     float64 `json:"skills"`
	Education  float64 `json:"education"`
	Projects   float64 `json:"projects"`
}

// For returns the weight configured for a component type.
func (w CategoryWeights) For(category types.ComponentType) float64 {
	switch category {
	case types.ComponentExperience:
		return w.Experience
	case types.ComponentSkill:
		return w.Skills
	case types.ComponentEducation:
		return w.Education
	case types.ComponentProject:
		return w.Projects
	}
	return 0
}

// QualityBands maps match quality labels to their lower-bound scores on
// the 0-100 scale. Every consumer derives labels from this single table so
// the score-to-band relation stays monotone.
type QualityBands struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
	Weak      float64 `json:"weak"`
}

// BandFor returns the quality band for a 0-100 score.
func (b QualityBands) BandFor(score float64) types.MatchQuality {
	switch {
	case score >= b.Excellent:
		return types.QualityExcellent
	case score >= b.Good:
		return types.QualityGood
	case score >= b.Fair:
		return types.QualityFair
	case score >= b.Weak:
		return types.QualityWeak
	default:
		return types.QualityNone
	}
}

// Engine holds the tunable parameters of the match engine.
type Engine struct {
	Weights CategoryWeights `json:"weights"`
	Bands   QualityBands    `json:"bands"`

	// CacheTTL is the fixed time-to-live of optimized score cache entries.
	CacheTTL time.Duration `json:"cache_ttl"`

	// MinSimilarity is the floor below which a retrieved component does not
	// count toward any category breakdown.
	MinSimilarity float64 `json:"min_similarity"`

	// TopK is the default per-category retrieval cap.
	TopK int `json:"top_k"`

	// MaxTechnologiesPerGroup bounds the technologies embedded per skill
	// category to keep embedding calls bounded.
	MaxTechnologiesPerGroup int `json:"max_technologies_per_group"`

	// MaxConcurrentCategories bounds the per-category scatter/gather.
	MaxConcurrentCategories int `json:"max_concurrent_categories"`

	// CandidateLimit is the per-requirement retrieval cap used by the
	// matching service.
	CandidateLimit int `json:"candidate_limit"`

	// TopMatchesPerCategory bounds the ranked component lists attached to
	// an optimized score.
	TopMatchesPerCategory int `json:"top_matches_per_category"`
}

// Default returns the default engine configuration.
func Default() Engine {
	return Engine{
		Weights: CategoryWeights{
			Experience: 0.35,
			Skills:     0.35,
			Education:  0.10,
			Projects:   0.20,
		},
		Bands: QualityBands{
			Excellent: 85,
			Good:      65,
			Fair:      40,
			Weak:      20,
		},
		CacheTTL:                15 * time.Minute,
		MinSimilarity:           0.30,
		TopK:                    50,
		MaxTechnologiesPerGroup: 10,
		MaxConcurrentCategories: 4,
		CandidateLimit:          5,
		TopMatchesPerCategory:   5,
	}
}

// AcceptanceSimilarity is the minimum similarity a candidate must clear to
// be attached to a match result. It is derived from the fair band so a
// rejected candidate's score always lands in the weak or none band.
func (e Engine) AcceptanceSimilarity() float64 {
	return e.Bands.Fair / 100
}

// Load reads an engine configuration from a JSON file and fills missing
// values from defaults.
func Load(path string) (Engine, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	file.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants: weights form a convex
// combination and band thresholds are strictly monotone.
func (e Engine) Validate() error {
	sum := e.Weights.Experience + e.Weights.Skills + e.Weights.Education + e.Weights.Projects
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("config error: category weights must sum to 1, got %.4f", sum)
	}
	for _, w := range []float64{e.Weights.Experience, e.Weights.Skills, e.Weights.Education, e.Weights.Projects} {
		if w < 0 {
			return fmt.Errorf("config error: category weights must be non-negative")
		}
	}

	if !(e.Bands.Excellent > e.Bands.Good && e.Bands.Good > e.Bands.Fair && e.Bands.Fair > e.Bands.Weak && e.Bands.Weak > 0) {
		return fmt.Errorf("config error: band thresholds must be strictly decreasing and positive")
	}
	if e.Bands.Excellent > 100 {
		return fmt.Errorf("config error: excellent threshold must not exceed 100")
	}

	if e.CacheTTL <= 0 {
		return fmt.Errorf("config error: cache TTL must be positive")
	}
	if e.MinSimilarity < 0 || e.MinSimilarity > 1 {
		return fmt.Errorf("config error: min similarity must be in [0, 1]")
	}
	if e.TopK <= 0 {
		return fmt.Errorf("config error: top_k must be positive")
	}
	if e.MaxConcurrentCategories <= 0 {
		return fmt.Errorf("config error: max concurrent categories must be positive")
	}

	return nil
}

// fileConfig mirrors Engine with optional fields so a config file can
// override only what it sets.
type fileConfig struct {
	Weights                 *CategoryWeights `json:"weights,omitempty"`
	Bands                   *QualityBands    `json:"bands,omitempty"`
	CacheTTLSeconds         *int             `json:"cache_ttl_seconds,omitempty"`
	MinSimilarity           *float64         `json:"min_similarity,omitempty"`
	TopK                    *int             `json:"top_k,omitempty"`
	MaxTechnologiesPerGroup *int             `json:"max_technologies_per_group,omitempty"`
	MaxConcurrentCategories *int             `json:"max_concurrent_categories,omitempty"`
	CandidateLimit          *int             `json:"candidate_limit,omitempty"`
	TopMatchesPerCategory   *int             `json:"top_matches_per_category,omitempty"`
}

func (f *fileConfig) apply(cfg *Engine) {
	if f.Weights != nil {
		cfg.Weights = *f.Weights
	}
	if f.Bands != nil {
		cfg.Bands = *f.Bands
	}
	if f.CacheTTLSeconds != nil {
		cfg.CacheTTL = time.Duration(*f.CacheTTLSeconds) * time.Second
	}
	if f.MinSimilarity != nil {
		cfg.MinSimilarity = *f.MinSimilarity
	}
	if f.TopK != nil {
		cfg.TopK = *f.TopK
	}
	if f.MaxTechnologiesPerGroup != nil {
		cfg.MaxTechnologiesPerGroup = *f.MaxTechnologiesPerGroup
	}
	if f.MaxConcurrentCategories != nil {
		cfg.MaxConcurrentCategories = *f.MaxConcurrentCategories
	}
	if f.CandidateLimit != nil {
		cfg.CandidateLimit = *f.CandidateLimit
	}
	if f.TopMatchesPerCategory != nil {
		cfg.TopMatchesPerCategory = *f.TopMatchesPerCategory
	}
}
