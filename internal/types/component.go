// Package types provides type definitions for structured data shared across the match engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"
)

// ComponentType discriminates the four kinds of reusable CV content units.
type ComponentType string

// Component type constants define the four supported categories
const (
	// ComponentExperience is a work experience entry
	ComponentExperience ComponentType = "experience"
	// ComponentEducation is an education entry
	ComponentEducation ComponentType = "education"
	// ComponentSkill is a skill entry
	ComponentSkill ComponentType = "skill"
	// ComponentProject is a project entry
	ComponentProject ComponentType = "project"
)

// ComponentTypes lists all valid component types in breakdown order.
var ComponentTypes = []ComponentType{
	ComponentExperience,
	ComponentSkill,
	ComponentEducation,
	ComponentProject,
}

// IsValid reports whether t is one of the four supported component types.
func (t ComponentType) IsValid() bool {
	switch t {
	case ComponentExperience, ComponentEducation, ComponentSkill, ComponentProject:
		return true
	}
	return false
}

// Component is a reusable CV content unit. The same shape is used for
// components sourced from a job description; those additionally set
// Required to distinguish hard requirements from nice-to-haves.
type Component struct {
	ID           string        `json:"id,omitempty"`
	Type         ComponentType `json:"type"`
	Title        string        `json:"title"`
	Organization string        `json:"organization,omitempty"`
	Description  string        `json:"description,omitempty"`
	Highlights   []string      `json:"highlights,omitempty"`
	StartDate    *time.Time    `json:"start_date,omitempty"`
	EndDate      *time.Time    `json:"end_date,omitempty"`

	// Embedding is lazily computed and cached; it is cleared whenever
	// Title, Description, or Organization changes.
	Embedding []float32 `json:"embedding,omitempty"`

	// Required marks a job-description requirement as a hard requirement
	// rather than a nice-to-have. Unused on user-owned components.
	Required bool `json:"required,omitempty"`
}

// DedupeKey returns a stable key for cross-category deduplication.
// Components with an ID use it directly; components lacking one fall back
// to a synthetic key derived from type, title and organization.
func (c *Component) DedupeKey() string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("%s|%s|%s",
		c.Type,
		strings.ToLower(strings.TrimSpace(c.Title)),
		strings.ToLower(strings.TrimSpace(c.Organization)),
	)
}

// EmbeddingText returns the text that represents this component for
// embedding purposes: title, organization, description and highlights
// joined into one string.
func (c *Component) EmbeddingText() string {
	parts := make([]string, 0, 3+len(c.Highlights))
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Organization != "" {
		parts = append(parts, c.Organization)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	parts = append(parts, c.Highlights...)
	return strings.Join(parts, ". ")
}
