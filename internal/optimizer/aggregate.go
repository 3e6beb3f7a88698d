package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// compute performs the uncached scoring pass: decompose the job
// description, embed and retrieve per skill category with a bounded
// scatter/gather, then aggregate into the weighted breakdown.
func (o *Optimizer) compute(ctx context.Context, userID, jobDescription string, topK int) (*types.OptimizedMatchScore, error) {
	start := time.Now()

	dec, err := o.dec.Extract(ctx, jobDescription)
	if err != nil {
		return nil, err
	}

	groups := dec.Metadata.GroupedSkills
	if len(groups) == 0 {
		groups = groupsFromRequirements(dec.Requirements)
	}

	// Per-category embedding and retrieval are independent; fan out with
	// a bounded limit and join before aggregation.
	perGroup := make([][]repository.Match, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrentCategories)
	for i, group := range groups {
		g.Go(func() error {
			vector, err := o.embedder.Embed(gctx, categoryText(group, o.cfg.MaxTechnologiesPerGroup))
			if err != nil {
				return err
			}
			matches, err := o.repo.SimilaritySearch(gctx, userID, vector, topK)
			if err != nil {
				return err
			}
			perGroup[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deduped := dedupeMatches(perGroup)

	o.log.Debug("retrieval complete",
		zap.String("user_id", userID),
		zap.Int("categories", len(groups)),
		zap.Int("components", len(deduped)),
	)

	score := o.aggregate(deduped, groups)
	score.Metadata = types.ScoreMetadata{
		ComputedAt:           start,
		Duration:             time.Since(start),
		CategoriesEvaluated:  len(groups),
		ComponentsConsidered: len(deduped),
	}
	return score, nil
}

// categoryText builds the embedded representation of one skill group,
// capping the technology list to bound embedding input size.
func categoryText(group types.SkillGroup, maxTechnologies int) string {
	parts := []string{group.Category}
	if group.Summary != "" {
		parts = append(parts, group.Summary)
	}
	technologies := group.Technologies
	if maxTechnologies > 0 && len(technologies) > maxTechnologies {
		technologies = technologies[:maxTechnologies]
	}
	if len(technologies) > 0 {
		parts = append(parts, strings.Join(technologies, ", "))
	}
	return strings.Join(parts, ". ")
}

// groupsFromRequirements synthesizes skill groups when the decomposer
// extracted requirements but no grouped skills, so retrieval still runs.
func groupsFromRequirements(requirements []types.Component) []types.SkillGroup {
	byType := make(map[types.ComponentType][]string)
	for _, req := range requirements {
		byType[req.Type] = append(byType[req.Type], req.Title)
	}

	var groups []types.SkillGroup
	for _, category := range types.ComponentTypes {
		titles := byType[category]
		if len(titles) == 0 {
			continue
		}
		groups = append(groups, types.SkillGroup{
			Category:     string(category),
			Summary:      strings.Join(titles, "; "),
			Technologies: titles,
		})
	}
	return groups
}

// dedupeMatches merges the per-category result sets, keeping the best
// similarity per component key.
func dedupeMatches(perGroup [][]repository.Match) []repository.Match {
	best := make(map[string]repository.Match)
	var order []string
	for _, matches := range perGroup {
		for _, match := range matches {
			key := match.Component.DedupeKey()
			current, seen := best[key]
			if !seen {
				order = append(order, key)
			}
			if !seen || match.Similarity > current.Similarity {
				best[key] = match
			}
		}
	}

	deduped := make([]repository.Match, 0, len(best))
	for _, key := range order {
		deduped = append(deduped, best[key])
	}
	return deduped
}

// aggregate classifies deduplicated matches into the four category
// breakdowns and combines them into the overall score.
func (o *Optimizer) aggregate(matches []repository.Match, groups []types.SkillGroup) *types.OptimizedMatchScore {
	qualifying := make(map[types.ComponentType][]types.RankedComponent)
	for _, match := range matches {
		if match.Similarity < o.cfg.MinSimilarity {
			continue
		}
		category := match.Component.Type
		if !category.IsValid() {
			continue
		}
		qualifying[category] = append(qualifying[category], types.RankedComponent{
			Component:  match.Component,
			Similarity: match.Similarity,
		})
	}

	breakdown := make([]types.CategoryScore, 0, len(types.ComponentTypes))
	topMatched := make(map[types.ComponentType][]types.RankedComponent, len(types.ComponentTypes))
	overall := 0.0
	for _, category := range types.ComponentTypes {
		ranked := qualifying[category]
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Similarity > ranked[j].Similarity
		})

		// A category with no qualifying matches contributes 0 through its
		// weight; it is never treated as not applicable.
		categoryScore := 0.0
		if len(ranked) > 0 {
			sum := 0.0
			for _, rc := range ranked {
				sum += rc.Similarity
			}
			categoryScore = clampScore(sum / float64(len(ranked)) * 100)
		}

		breakdown = append(breakdown, types.CategoryScore{
			Category: category,
			Score:    categoryScore,
			Matches:  len(ranked),
		})
		overall += o.cfg.Weights.For(category) * categoryScore

		if limit := o.cfg.TopMatchesPerCategory; limit > 0 && len(ranked) > limit {
			ranked = ranked[:limit]
		}
		topMatched[category] = ranked
	}

	missing := missingSkills(groups, qualifying)

	return &types.OptimizedMatchScore{
		Score:                clampScore(overall),
		Breakdown:            breakdown,
		MissingSkills:        missing,
		Suggestions:          o.buildSuggestions(matches, breakdown, missing),
		TopMatchedComponents: topMatched,
	}
}

// missingSkills lists job-description technologies not covered by any
// qualifying matched component. Coverage is decided on whole terms so a
// short name like "Go" is not satisfied by "MongoDB" or "Django".
func missingSkills(groups []types.SkillGroup, qualifying map[types.ComponentType][]types.RankedComponent) []string {
	covered := make(map[string]bool)
	for _, ranked := range qualifying {
		for _, rc := range ranked {
			for _, term := range skillTerms(rc.Component.EmbeddingText()) {
				covered[term] = true
			}
		}
	}

	seen := make(map[string]bool)
	var missing []string
	for _, group := range groups {
		for _, tech := range group.Technologies {
			key := strings.ToLower(tech)
			if seen[key] {
				continue
			}
			seen[key] = true
			if !termsCovered(covered, skillTerms(tech)) {
				missing = append(missing, tech)
			}
		}
	}
	return missing
}

// skillTerms splits text into lowercase technology terms. '+' and '#'
// stay inside a term so "C++" and "C#" survive intact.
func skillTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#')
	})
}

// termsCovered reports whether every term of a technology name appears
// in the covered set. A name with no terms is never covered.
func termsCovered(covered map[string]bool, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !covered[term] {
			return false
		}
	}
	return true
}

// buildSuggestions produces ordered improvement hints, most important
// first.
func (o *Optimizer) buildSuggestions(matches []repository.Match, breakdown []types.CategoryScore, missing []string) []string {
	var suggestions []string

	if len(matches) == 0 {
		suggestions = append(suggestions,
			"Your component library is empty; add experience, skill, education, and project entries to get a meaningful match score.")
		if len(missing) > 0 {
			suggestions = append(suggestions, missingSkillSuggestion(missing))
		}
		return suggestions
	}

	if len(missing) > 0 {
		suggestions = append(suggestions, missingSkillSuggestion(missing))
	}

	weakest := o.weakestCategory(breakdown)
	if weakest != nil && weakest.Score < 50 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your %s entries contribute the least to this match (%.0f/100); add or expand %s components relevant to the role.",
			weakest.Category, weakest.Score, weakest.Category))
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Your library covers this job description well; tailor highlight wording to mirror the posting's terminology.")
	}
	return suggestions
}

func missingSkillSuggestion(missing []string) string {
	shown := missing
	if len(shown) > 5 {
		shown = shown[:5]
	}
	return fmt.Sprintf("The job description mentions skills absent from your library: %s.", strings.Join(shown, ", "))
}

// weakestCategory returns the weighted category with the lowest score, or
// nil when no category carries weight.
func (o *Optimizer) weakestCategory(breakdown []types.CategoryScore) *types.CategoryScore {
	var weakest *types.CategoryScore
	for i := range breakdown {
		entry := &breakdown[i]
		if o.cfg.Weights.For(entry.Category) == 0 {
			continue
		}
		if weakest == nil || entry.Score < weakest.Score {
			weakest = entry
		}
	}
	return weakest
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
