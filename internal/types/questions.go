// Package types provides type definitions for structured data used throughout the resume scorer.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Category identifies one of the four fixed screening-question groups.
type Category string

const (
	// CategoryEducation groups degree, certification and coursework requirements
	CategoryEducation Category = "education"
	// CategoryExperience groups years, domains and roles the candidate must have held
	CategoryExperience Category = "experience"
	// CategoryTechnicalSkills groups tools, languages, licenses and hard skills
	CategoryTechnicalSkills Category = "technical_skills"
	// CategorySoftSkills groups communication, leadership and teamwork expectations
	CategorySoftSkills Category = "soft_skills"
)

// Categories lists every category in the order questions are scored and reported.
var Categories = []Category{
	CategoryEducation,
	CategoryExperience,
	CategoryTechnicalSkills,
	CategorySoftSkills,
}

// Question is a single yes/no screening question derived from a job description.
type Question struct {
	Question string `json:"question"`
}

// JDQuestions holds the generated screening questions grouped by category.
type JDQuestions struct {
	Education       []Question `json:"education"`
	Experience      []Question `json:"experience"`
	TechnicalSkills []Question `json:"technical_skills"`
	SoftSkills      []Question `json:"soft_skills"`
}

// ForCategory returns the questions of the given category, or nil for an unknown category.
func (q *JDQuestions) ForCategory(c Category) []Question {
	if q == nil {
		return nil
	}
	switch c {
	case CategoryEducation:
		return q.Education
	case CategoryExperience:
		return q.Experience
	case CategoryTechnicalSkills:
		return q.TechnicalSkills
	case CategorySoftSkills:
		return q.SoftSkills
	default:
		return nil
	}
}

// Total returns the number of questions across all categories.
func (q *JDQuestions) Total() int {
	total := 0
	for _, c := range Categories {
		total += len(q.ForCategory(c))
	}
	return total
}
