// Package decomposer turns free-text job descriptions into structured
// requirement components and a metadata summary via LLM extraction.
package decomposer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-match-engine/internal/schemas"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// schemaName is the embedded JSON Schema the raw LLM output must satisfy.
const schemaName = "jd_decomposition.schema.json"

// Decomposition is the structured output for one job description.
type Decomposition struct {
	Metadata     types.JDMetadata  `json:"metadata"`
	Requirements []types.Component `json:"requirements"`
}

// Decomposer extracts structured requirements from job description text.
type Decomposer interface {
	Extract(ctx context.Context, text string) (*Decomposition, error)
}

// parseDecomposition validates raw extractor JSON against the schema and
// decodes it into a Decomposition.
func parseDecomposition(raw string) (*Decomposition, error) {
	if err := schemas.Validate(schemaName, raw); err != nil {
		return nil, &DecompositionError{Message: "extractor output does not match schema", Cause: err}
	}

	var dec Decomposition
	if err := json.Unmarshal([]byte(raw), &dec); err != nil {
		return nil, &DecompositionError{Message: "failed to parse extractor JSON", Cause: err}
	}

	if err := postProcess(&dec); err != nil {
		return nil, err
	}
	return &dec, nil
}

// postProcess normalizes the decoded decomposition: trims text fields,
// drops empty skill groups and requirements, and rejects unusable output.
func postProcess(dec *Decomposition) error {
	groups := dec.Metadata.GroupedSkills[:0]
	for _, group := range dec.Metadata.GroupedSkills {
		group.Category = strings.TrimSpace(group.Category)
		group.Summary = strings.TrimSpace(group.Summary)
		if group.Category == "" {
			continue
		}
		techs := group.Technologies[:0]
		for _, tech := range group.Technologies {
			if t := strings.TrimSpace(tech); t != "" {
				techs = append(techs, t)
			}
		}
		group.Technologies = techs
		groups = append(groups, group)
	}
	dec.Metadata.GroupedSkills = groups

	requirements := dec.Requirements[:0]
	for _, req := range dec.Requirements {
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" || !req.Type.IsValid() {
			continue
		}
		requirements = append(requirements, req)
	}
	dec.Requirements = requirements

	if len(dec.Metadata.GroupedSkills) == 0 && len(dec.Requirements) == 0 {
		return &DecompositionError{Message: "extractor produced no skill groups or requirements"}
	}
	return nil
}
