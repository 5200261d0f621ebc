// Package types provides type definitions for structured data used throughout the portfolio-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// PersonalInfo holds the identity section of a parsed resume.
// Name and Email are the critical fields; everything else is optional.
type PersonalInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Experience represents a single work experience entry
type Experience struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description"`
}

// Ongoing reports whether the entry represents a current position
func (e Experience) Ongoing() bool {
	end := strings.ToLower(strings.TrimSpace(e.EndDate))
	return end == "" || end == "present" || end == "current" || end == "ongoing"
}

// Education represents a single education entry
type Education struct {
	Degree      string `json:"degree"`
	School      string `json:"school"`
	Year        string `json:"year,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project represents a portfolio project entry
type Project struct {
	Title       string `json:"title"`
	TechStack   string `json:"tech_stack,omitempty"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	GitHubURL   string `json:"github_url,omitempty"`
}

// Achievement represents an award, certification, or honor
type Achievement struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// PortfolioData is the canonical structured record extracted from a resume.
// It is the single shape that flows between providers, the scorer, the
// merger, and downstream rendering.
type PortfolioData struct {
	PersonalInfo PersonalInfo  `json:"personal_info"`
	Skills       []string      `json:"skills"`
	Experience   []Experience  `json:"experience"`
	Education    []Education   `json:"education"`
	Projects     []Project     `json:"projects"`
	Achievements []Achievement `json:"achievements"`
}

// EnsureSections replaces nil collection fields with empty slices so that
// every section is present, even if empty. Providers that omit a section
// entirely still hand downstream code a fully shaped record.
func (p *PortfolioData) EnsureSections() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Achievements == nil {
		p.Achievements = []Achievement{}
	}
}

// SectionCount is the number of sections a fully shaped record carries.
const SectionCount = 6

// SectionsPresent counts how many of the six sections are present as
// non-nil collections (personal info always counts).
func (p *PortfolioData) SectionsPresent() int {
	count := 1 // personal_info is a struct, always present
	if p.Skills != nil {
		count++
	}
	if p.Experience != nil {
		count++
	}
	if p.Education != nil {
		count++
	}
	if p.Projects != nil {
		count++
	}
	if p.Achievements != nil {
		count++
	}
	return count
}

// HasSkill reports whether the record already lists the skill,
// compared case-insensitively.
func (p *PortfolioData) HasSkill(skill string) bool {
	needle := strings.ToLower(strings.TrimSpace(skill))
	for _, s := range p.Skills {
		if strings.ToLower(strings.TrimSpace(s)) == needle {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record. Stages that mutate a record
// (the merger in particular) operate on a clone so the original stays
// intact for diagnostics.
func (p *PortfolioData) Clone() *PortfolioData {
	if p == nil {
		return nil
	}
	out := *p
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}
	if p.Experience != nil {
		out.Experience = append([]Experience(nil), p.Experience...)
	}
	if p.Education != nil {
		out.Education = append([]Education(nil), p.Education...)
	}
	if p.Projects != nil {
		out.Projects = append([]Project(nil), p.Projects...)
	}
	if p.Achievements != nil {
		out.Achievements = append([]Achievement(nil), p.Achievements...)
	}
	return &out
}
