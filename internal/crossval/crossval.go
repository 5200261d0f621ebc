// Package crossval runs a second provider over the same document and
// reconciles its record with the primary one. Reconciliation is strictly
// additive: the primary provider's data is never overwritten.
package crossval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dchen/portfolio-engine/internal/providers"
	"github.com/dchen/portfolio-engine/internal/ratelimit"
	"github.com/dchen/portfolio-engine/internal/types"
)

// DefaultLengthMargin is how much longer a secondary description must be
// before an enhance suggestion is generated (20%).
const DefaultLengthMargin = 0.20

// Validator picks a secondary provider and merges its opinion into the
// primary record.
type Validator struct {
	tracker *ratelimit.Tracker
	margin  float64
	logger  *slog.Logger
}

// Option customizes a Validator
type Option func(*Validator)

// WithLengthMargin overrides the description-length margin
func WithLengthMargin(margin float64) Option {
	return func(v *Validator) {
		if margin > 0 {
			v.margin = margin
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Validator sharing the orchestrator's rate-limit tracker
func New(tracker *ratelimit.Tracker, opts ...Option) *Validator {
	if tracker == nil {
		tracker = ratelimit.NewTracker()
	}
	v := &Validator{
		tracker: tracker,
		margin:  DefaultLengthMargin,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate obtains a second opinion and merges it into a clone of the
// primary record. It never fails: when no secondary provider is
// available, or the secondary extraction errors, the primary record is
// returned unchanged with no suggestions. Candidates from the primary
// run are reused instead of paying for a second extraction.
func (v *Validator) Validate(
	ctx context.Context,
	documentText string,
	primary *types.PortfolioData,
	primaryProvider string,
	pool []providers.Extractor,
	candidates map[string]*types.PortfolioData,
) (*types.PortfolioData, []types.Suggestion) {
	secondary, secondaryProvider := v.secondOpinion(ctx, documentText, primaryProvider, pool, candidates)
	if secondary == nil {
		v.logger.Info("crossval.skipped", "primary", primaryProvider)
		return primary, nil
	}

	merged, suggestions := Merge(primary, secondary, v.margin)
	v.logger.Info("crossval.merged",
		"primary", primaryProvider,
		"secondary", secondaryProvider,
		"suggestions", len(suggestions),
	)
	return merged, suggestions
}

// secondOpinion returns a record from a provider other than the primary.
// An already-successful candidate from the same run is preferred; failing
// that, the first different non-limited provider in pool order is called.
func (v *Validator) secondOpinion(
	ctx context.Context,
	documentText string,
	primaryProvider string,
	pool []providers.Extractor,
	candidates map[string]*types.PortfolioData,
) (*types.PortfolioData, string) {
	for _, extractor := range pool {
		name := extractor.Name()
		if name == primaryProvider {
			continue
		}
		if record, ok := candidates[name]; ok && record != nil {
			return record, name
		}
	}

	for _, extractor := range pool {
		name := extractor.Name()
		if name == primaryProvider || v.tracker.IsLimited(name) {
			continue
		}
		record, err := extractor.Extract(ctx, documentText)
		if err != nil {
			if providers.IsRateLimited(err) {
				v.tracker.MarkLimited(name)
			}
			v.logger.Warn("crossval.secondary_failed", "provider", name, "error", err)
			continue
		}
		return record, name
	}
	return nil, ""
}

// Merge reconciles a secondary record into a clone of the primary and
// returns the clone plus all generated suggestions. Empty primary fields
// and entries absent from the primary are filled from the secondary as
// applied add suggestions; enhance suggestions are informational only.
func Merge(primary, secondary *types.PortfolioData, margin float64) (*types.PortfolioData, []types.Suggestion) {
	merged := primary.Clone()
	var suggestions []types.Suggestion

	fillField("personal_info.name", secondary.PersonalInfo.Name, &merged.PersonalInfo.Name, &suggestions)
	fillField("personal_info.email", secondary.PersonalInfo.Email, &merged.PersonalInfo.Email, &suggestions)
	fillField("personal_info.phone", secondary.PersonalInfo.Phone, &merged.PersonalInfo.Phone, &suggestions)
	fillField("personal_info.linkedin", secondary.PersonalInfo.LinkedIn, &merged.PersonalInfo.LinkedIn, &suggestions)
	fillField("personal_info.github", secondary.PersonalInfo.GitHub, &merged.PersonalInfo.GitHub, &suggestions)
	fillField("personal_info.portfolio", secondary.PersonalInfo.Portfolio, &merged.PersonalInfo.Portfolio, &suggestions)
	fillField("personal_info.bio", secondary.PersonalInfo.Bio, &merged.PersonalInfo.Bio, &suggestions)
	fillField("personal_info.location", secondary.PersonalInfo.Location, &merged.PersonalInfo.Location, &suggestions)

	for _, skill := range secondary.Skills {
		skill = strings.TrimSpace(skill)
		if skill == "" || merged.HasSkill(skill) {
			continue
		}
		merged.Skills = append(merged.Skills, skill)
		suggestions = append(suggestions, types.Suggestion{
			Field:    "skills",
			Action:   types.SuggestionAdd,
			NewValue: skill,
			Reason:   "skill missing in primary record",
			Applied:  true,
		})
	}

	suggestions = append(suggestions, mergeExperience(merged, secondary, margin)...)
	suggestions = append(suggestions, mergeEducation(merged, secondary)...)
	suggestions = append(suggestions, mergeProjects(merged, secondary, margin)...)
	suggestions = append(suggestions, mergeAchievements(merged, secondary)...)
	return merged, suggestions
}

// fillField applies an add suggestion when the primary field is empty and
// the secondary has a value. Non-empty primary fields are left alone.
func fillField(field, secondaryValue string, target *string, suggestions *[]types.Suggestion) {
	secondaryValue = strings.TrimSpace(secondaryValue)
	if secondaryValue == "" || strings.TrimSpace(*target) != "" {
		return
	}
	*target = secondaryValue
	*suggestions = append(*suggestions, types.Suggestion{
		Field:    field,
		Action:   types.SuggestionAdd,
		NewValue: secondaryValue,
		Reason:   "field empty in primary record",
		Applied:  true,
	})
}

// mergeExperience appends entries only the secondary found and fills empty
// fields on matched ones. A description present in both but materially
// longer in the secondary would replace primary data, so it surfaces as an
// unapplied enhance suggestion instead.
func mergeExperience(merged, secondary *types.PortfolioData, margin float64) []types.Suggestion {
	var suggestions []types.Suggestion

	for _, exp := range secondary.Experience {
		if strings.TrimSpace(exp.Role) == "" && strings.TrimSpace(exp.Company) == "" {
			continue
		}
		idx := findExperience(merged.Experience, exp)
		if idx < 0 {
			merged.Experience = append(merged.Experience, exp)
			suggestions = append(suggestions, types.Suggestion{
				Field:    "experience",
				Action:   types.SuggestionAdd,
				NewValue: fmt.Sprintf("%s at %s", exp.Role, exp.Company),
				Reason:   "entry missing in primary record",
				Applied:  true,
			})
			continue
		}

		entry := &merged.Experience[idx]
		fillField(fmt.Sprintf("experience[%d].description", idx), exp.Description, &entry.Description, &suggestions)
		fillField(fmt.Sprintf("experience[%d].start_date", idx), exp.StartDate, &entry.StartDate, &suggestions)
		fillField(fmt.Sprintf("experience[%d].end_date", idx), exp.EndDate, &entry.EndDate, &suggestions)

		if materiallyLonger(exp.Description, entry.Description, margin) {
			suggestions = append(suggestions, types.Suggestion{
				Field:    fmt.Sprintf("experience[%d].description", idx),
				Action:   types.SuggestionEnhance,
				OldValue: entry.Description,
				NewValue: exp.Description,
				Reason:   "secondary record has a materially longer description",
				Applied:  false,
			})
		}
	}
	return suggestions
}

func mergeEducation(merged, secondary *types.PortfolioData) []types.Suggestion {
	var suggestions []types.Suggestion

	for _, edu := range secondary.Education {
		if strings.TrimSpace(edu.Degree) == "" && strings.TrimSpace(edu.School) == "" {
			continue
		}
		idx := findEducation(merged.Education, edu)
		if idx < 0 {
			merged.Education = append(merged.Education, edu)
			suggestions = append(suggestions, types.Suggestion{
				Field:    "education",
				Action:   types.SuggestionAdd,
				NewValue: fmt.Sprintf("%s, %s", edu.Degree, edu.School),
				Reason:   "entry missing in primary record",
				Applied:  true,
			})
			continue
		}

		entry := &merged.Education[idx]
		fillField(fmt.Sprintf("education[%d].year", idx), edu.Year, &entry.Year, &suggestions)
		fillField(fmt.Sprintf("education[%d].gpa", idx), edu.GPA, &entry.GPA, &suggestions)
		fillField(fmt.Sprintf("education[%d].description", idx), edu.Description, &entry.Description, &suggestions)
	}
	return suggestions
}

func mergeProjects(merged, secondary *types.PortfolioData, margin float64) []types.Suggestion {
	var suggestions []types.Suggestion

	for _, proj := range secondary.Projects {
		if strings.TrimSpace(proj.Title) == "" {
			continue
		}
		idx := findProject(merged.Projects, proj)
		if idx < 0 {
			merged.Projects = append(merged.Projects, proj)
			suggestions = append(suggestions, types.Suggestion{
				Field:    "projects",
				Action:   types.SuggestionAdd,
				NewValue: proj.Title,
				Reason:   "entry missing in primary record",
				Applied:  true,
			})
			continue
		}

		entry := &merged.Projects[idx]
		fillField(fmt.Sprintf("projects[%d].description", idx), proj.Description, &entry.Description, &suggestions)
		fillField(fmt.Sprintf("projects[%d].tech_stack", idx), proj.TechStack, &entry.TechStack, &suggestions)
		fillField(fmt.Sprintf("projects[%d].link", idx), proj.Link, &entry.Link, &suggestions)
		fillField(fmt.Sprintf("projects[%d].github_url", idx), proj.GitHubURL, &entry.GitHubURL, &suggestions)

		if materiallyLonger(proj.Description, entry.Description, margin) {
			suggestions = append(suggestions, types.Suggestion{
				Field:    fmt.Sprintf("projects[%d].description", idx),
				Action:   types.SuggestionEnhance,
				OldValue: entry.Description,
				NewValue: proj.Description,
				Reason:   "secondary record has a materially longer description",
				Applied:  false,
			})
		}
	}
	return suggestions
}

func mergeAchievements(merged, secondary *types.PortfolioData) []types.Suggestion {
	var suggestions []types.Suggestion

	for _, ach := range secondary.Achievements {
		if strings.TrimSpace(ach.Title) == "" {
			continue
		}
		idx := findAchievement(merged.Achievements, ach)
		if idx < 0 {
			merged.Achievements = append(merged.Achievements, ach)
			suggestions = append(suggestions, types.Suggestion{
				Field:    "achievements",
				Action:   types.SuggestionAdd,
				NewValue: ach.Title,
				Reason:   "entry missing in primary record",
				Applied:  true,
			})
			continue
		}

		entry := &merged.Achievements[idx]
		fillField(fmt.Sprintf("achievements[%d].issuer", idx), ach.Issuer, &entry.Issuer, &suggestions)
		fillField(fmt.Sprintf("achievements[%d].date", idx), ach.Date, &entry.Date, &suggestions)
		fillField(fmt.Sprintf("achievements[%d].description", idx), ach.Description, &entry.Description, &suggestions)
	}
	return suggestions
}

func materiallyLonger(candidate, current string, margin float64) bool {
	if current == "" {
		return false
	}
	return float64(len(candidate)) > float64(len(current))*(1+margin)
}

// findExperience matches entries by role+company, case-insensitively
func findExperience(entries []types.Experience, target types.Experience) int {
	for i := range entries {
		if strings.EqualFold(entries[i].Role, target.Role) && strings.EqualFold(entries[i].Company, target.Company) {
			return i
		}
	}
	return -1
}

// findEducation matches entries by degree+school, case-insensitively
func findEducation(entries []types.Education, target types.Education) int {
	for i := range entries {
		if strings.EqualFold(entries[i].Degree, target.Degree) && strings.EqualFold(entries[i].School, target.School) {
			return i
		}
	}
	return -1
}

// findProject matches entries by title, case-insensitively
func findProject(entries []types.Project, target types.Project) int {
	for i := range entries {
		if strings.EqualFold(entries[i].Title, target.Title) {
			return i
		}
	}
	return -1
}

// findAchievement matches entries by title, case-insensitively
func findAchievement(entries []types.Achievement, target types.Achievement) int {
	for i := range entries {
		if strings.EqualFold(entries[i].Title, target.Title) {
			return i
		}
	}
	return -1
}
