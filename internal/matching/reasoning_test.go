package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

func TestAcceptedReasoning_NamesSharedAndMissingTerms(t *testing.T) {
	requirement := types.Component{
		Type:  types.ComponentSkill,
		Title: "React and TypeScript development",
	}
	match := repository.Match{
		Component:  types.Component{Type: types.ComponentProject, Title: "Dashboard rebuild", Description: "React frontend"},
		Similarity: 0.8,
	}

	reasoning := acceptedReasoning(requirement, match)
	assert.Contains(t, reasoning, "react")
	assert.Contains(t, reasoning, "does not mention")
	assert.Contains(t, reasoning, "typescript")
	assert.Contains(t, reasoning, "Dashboard rebuild")
}

func TestAcceptedReasoning_NoSharedTerms(t *testing.T) {
	requirement := types.Component{Type: types.ComponentSkill, Title: "Kubernetes"}
	match := repository.Match{
		Component: types.Component{Type: types.ComponentExperience, Title: "Platform operations", Organization: "Acme"},
	}

	reasoning := acceptedReasoning(requirement, match)
	assert.Contains(t, reasoning, "Semantically close")
	assert.Contains(t, reasoning, "Acme")
}

func TestRejectedReasoning_NamesRequirementAndClosest(t *testing.T) {
	requirement := types.Component{Type: types.ComponentSkill, Title: "Scala"}
	best := repository.Match{
		Component:  types.Component{Type: types.ComponentSkill, Title: "Java"},
		Similarity: 0.2,
	}

	reasoning := rejectedReasoning(requirement, best)
	assert.Contains(t, reasoning, "Scala")
	assert.Contains(t, reasoning, "Java")
	assert.Contains(t, reasoning, "below the acceptance threshold")
}

func TestSalientTerms_DropsStopwordsAndShortTokens(t *testing.T) {
	component := types.Component{
		Type:  types.ComponentSkill,
		Title: "Strong experience with Go and C++",
	}

	terms := salientTerms(component)
	assert.True(t, terms["c++"])
	assert.False(t, terms["go"], "two-letter tokens are not salient")
	assert.False(t, terms["strong"])
	assert.False(t, terms["experience"])
	assert.False(t, terms["with"])
}

func TestSalientTerms_Deterministic(t *testing.T) {
	req := types.Component{Title: "Terraform Ansible Pulumi CloudFormation Chef Puppet"}
	cv := types.Component{Title: "unrelated"}

	first, _ := partitionTerms(salientTerms(req), salientTerms(cv))
	_, missing1 := partitionTerms(salientTerms(req), salientTerms(cv))
	_, missing2 := partitionTerms(salientTerms(req), salientTerms(cv))

	assert.Empty(t, first)
	assert.Equal(t, missing1, missing2)
	assert.Len(t, capTerms(missing1), maxReasoningTerms)
}

func TestComponentLabel(t *testing.T) {
	withOrg := types.Component{Type: types.ComponentExperience, Title: "Backend Engineer", Organization: "Acme"}
	assert.Equal(t, `"Backend Engineer" (experience, Acme)`, componentLabel(withOrg))

	withoutOrg := types.Component{Type: types.ComponentSkill, Title: "Go"}
	assert.Equal(t, `"Go" (skill)`, componentLabel(withoutOrg))
}
