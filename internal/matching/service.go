// Package matching produces fine-grained, per-requirement matches between
// a job description and a user's component library.
package matching

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-match-engine/internal/config"
	"github.com/jonathan/cv-match-engine/internal/decomposer"
	"github.com/jonathan/cv-match-engine/internal/embedding"
	"github.com/jonathan/cv-match-engine/internal/logger"
	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// Service matches every requirement component of a job description
// against the single best candidate from a user's library.
type Service struct {
	embedder embedding.Provider
	repo     repository.ComponentRepository
	dec      decomposer.Decomposer
	cfg      config.Engine
	log      *zap.Logger
}

// NewService creates a matching service. The logger may be nil.
func NewService(
	embedder embedding.Provider,
	repo repository.ComponentRepository,
	dec decomposer.Decomposer,
	cfg config.Engine,
	log *zap.Logger,
) *Service {
	return &Service{
		embedder: embedder,
		repo:     repo,
		dec:      dec,
		cfg:      cfg,
		log:      logger.OrNop(log),
	}
}

// MatchJobDescription decomposes a job description document and pairs
// each requirement with at most one library component, labeled with a
// quality band and a reasoning string.
func (s *Service) MatchJobDescription(ctx context.Context, document []byte, userID string) (*types.JDMatchingResults, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "userId", Message: "user id is required"}
	}
	if len(document) == 0 {
		return nil, &ValidationError{Field: "document", Message: "job description document is empty"}
	}

	dec, err := s.dec.Extract(ctx, string(document))
	if err != nil {
		return nil, err
	}

	requirements := dec.Requirements
	if len(requirements) == 0 {
		requirements = requirementsFromGroups(dec.Metadata.GroupedSkills)
	}

	texts := make([]string, len(requirements))
	for i, req := range requirements {
		texts[i] = req.EmbeddingText()
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	matches := make([]types.MatchResult, len(requirements))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentCategories)
	for i, req := range requirements {
		g.Go(func() error {
			match, err := s.matchRequirement(gctx, userID, req, vectors[i])
			if err != nil {
				return err
			}
			matches[i] = *match
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overall := overallScore(matches)
	s.log.Debug("matched job description",
		zap.String("user_id", userID),
		zap.Int("requirements", len(requirements)),
		zap.Float64("overall_score", overall),
	)

	return &types.JDMatchingResults{
		JDMetadata:   dec.Metadata,
		JDComponents: requirements,
		Matches:      matches,
		OverallScore: overall,
	}, nil
}

// matchRequirement retrieves candidates for one requirement and keeps the
// single best by similarity, translating it into a score and quality band.
func (s *Service) matchRequirement(ctx context.Context, userID string, requirement types.Component, vector []float32) (*types.MatchResult, error) {
	candidates, err := s.repo.SimilaritySearch(ctx, userID, vector, s.cfg.CandidateLimit)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &types.MatchResult{
			JDComponent: requirement,
			Score:       0,
			Quality:     types.QualityNone,
			Reasoning:   noCandidateReasoning(requirement),
		}, nil
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Similarity > best.Similarity {
			best = candidate
		}
	}

	score := similarityToScore(best.Similarity)
	quality := s.cfg.Bands.BandFor(score)

	if best.Similarity < s.cfg.AcceptanceSimilarity() {
		// Below acceptance the candidate is dropped; the band derived
		// from its low score is already weak or none.
		return &types.MatchResult{
			JDComponent: requirement,
			Score:       score,
			Quality:     quality,
			Reasoning:   rejectedReasoning(requirement, best),
		}, nil
	}

	return &types.MatchResult{
		JDComponent: requirement,
		CVComponent: &best.Component,
		Score:       score,
		Quality:     quality,
		Reasoning:   acceptedReasoning(requirement, best),
	}, nil
}

// overallScore is the mean of all non-nil match scores, with matches for
// hard requirements counted double.
func overallScore(matches []types.MatchResult) float64 {
	sum := 0.0
	weight := 0.0
	for _, match := range matches {
		if match.CVComponent == nil {
			continue
		}
		w := 1.0
		if match.JDComponent.Required {
			w = 2.0
		}
		sum += match.Score * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// similarityToScore maps cosine similarity onto the 0-100 score scale.
// Negative similarity clamps to 0.
func similarityToScore(similarity float64) float64 {
	if similarity <= 0 {
		return 0
	}
	if similarity >= 1 {
		return 100
	}
	return similarity * 100
}

// requirementsFromGroups synthesizes skill requirement components when
// the decomposer produced grouped skills but no explicit requirements.
func requirementsFromGroups(groups []types.SkillGroup) []types.Component {
	var requirements []types.Component
	for _, group := range groups {
		requirements = append(requirements, types.Component{
			Type:        types.ComponentSkill,
			Title:       group.Category,
			Description: group.Summary,
			Highlights:  group.Technologies,
			Required:    true,
		})
	}
	return requirements
}
