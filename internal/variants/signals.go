// Package variants derives ranked focus-area emphases from an existing
// match set and re-slices it into alternative resume variants. Everything
// here is purely functional over its inputs; the expensive embedding and
// retrieval work happened upstream.
package variants

import (
	"regexp"
	"strings"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// focusKeywords drives the per-area content heuristics. Matching is
// case-insensitive substring matching over the component's full text.
var focusKeywords = map[types.FocusArea][]string{
	types.FocusTechnical: {
		"architect", "built", "implemented", "engineered", "designed",
		"optimized", "migrated", "automated", "deployed", "debugged",
	},
	types.FocusLeadership: {
		"led", "lead", "mentored", "managed", "coached", "hired",
		"coordinated", "directed", "stakeholder", "team",
	},
	types.FocusInnovation: {
		"launched", "prototyped", "invented", "pioneered", "novel",
		"patent", "first", "redesigned", "initiated", "founded",
	},
}

// seniorLevels marks seniority levels where the role carries leadership
// expectations even when the posting text is thin on leadership language.
var seniorLevels = map[string]bool{
	"senior":    true,
	"staff":     true,
	"principal": true,
	"lead":      true,
	"manager":   true,
	"director":  true,
}

// leadershipSeniorityBoost returns the extra leadership signal implied by
// the posting's seniority level.
func leadershipSeniorityBoost(metadata types.JDMetadata) float64 {
	if seniorLevels[strings.ToLower(strings.TrimSpace(metadata.SeniorityLevel))] {
		return 0.25
	}
	return 0
}

// metricPattern recognizes quantifiable outcomes: percentages, money,
// multipliers, and counts with units.
var metricPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|x\b|ms\b|k\b|m\b|users|requests|\$)|\$\s*\d`)

// signalStrength scores how strongly a component's content aligns with a
// focus area, in [0, 1]. Balanced applies no emphasis and returns 0.
func signalStrength(area types.FocusArea, component types.Component) float64 {
	text := strings.ToLower(component.EmbeddingText())

	switch area {
	case types.FocusImpact:
		return metricSignal(component)
	case types.FocusTechnical:
		strength := keywordSignal(text, focusKeywords[area])
		// Skill and project entries are inherently technical evidence.
		if component.Type == types.ComponentSkill || component.Type == types.ComponentProject {
			strength += 0.3
		}
		return clampUnit(strength)
	case types.FocusLeadership, types.FocusInnovation:
		return keywordSignal(text, focusKeywords[area])
	default:
		return 0
	}
}

// keywordSignal counts distinct keyword hits, saturating at three.
func keywordSignal(text string, keywords []string) float64 {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	if hits > 3 {
		hits = 3
	}
	return float64(hits) / 3
}

// metricSignal is the proportion of highlights carrying a quantifiable
// metric, with the description counted as one more slot.
func metricSignal(component types.Component) float64 {
	total := len(component.Highlights) + 1
	hits := 0
	if metricPattern.MatchString(strings.ToLower(component.Description)) {
		hits++
	}
	for _, highlight := range component.Highlights {
		if metricPattern.MatchString(strings.ToLower(highlight)) {
			hits++
		}
	}
	return float64(hits) / float64(total)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
