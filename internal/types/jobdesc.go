package types

// SkillGroup is one category of skills extracted from a job description,
// with a short summary and the concrete technologies it mentions.
type SkillGroup struct {
	Category     string   `json:"category"`
	Summary      string   `json:"summary"`
	Technologies []string `json:"technologies"`
}

// JDMetadata is the structured summary of a job description produced by
// the decomposer.
type JDMetadata struct {
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	SeniorityLevel string       `json:"seniority_level"`
	GroupedSkills  []SkillGroup `json:"grouped_skills"`
}
