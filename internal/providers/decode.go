package providers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dchen/portfolio-engine/internal/llm"
	"github.com/dchen/portfolio-engine/internal/schemas"
	"github.com/dchen/portfolio-engine/internal/types"
)

// wirePortfolio mirrors the JSON shape providers are asked to produce.
// Education accepts both "school" and "institution" since models use the
// two interchangeably regardless of the prompt.
type wirePortfolio struct {
	PersonalInfo types.PersonalInfo  `json:"personal_info"`
	Skills       []string            `json:"skills"`
	Experience   []types.Experience  `json:"experience"`
	Education    []wireEducation     `json:"education"`
	Projects     []types.Project     `json:"projects"`
	Achievements []types.Achievement `json:"achievements"`
}

type wireEducation struct {
	Degree      string `json:"degree"`
	School      string `json:"school"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	GPA         string `json:"gpa"`
	Description string `json:"description"`
}

// decodeRecord turns a raw provider response into a PortfolioData record.
// It salvages what it can before giving up: markdown fences are stripped,
// the outermost JSON object is located inside any surrounding prose, and
// the result is schema-checked before unmarshaling. Only when no valid
// object can be recovered does it return *InvalidOutputError.
func decodeRecord(provider, raw string) (*types.PortfolioData, error) {
	text := llm.CleanJSONBlock(raw)
	text = extractJSONObject(text)
	if text == "" {
		return nil, &InvalidOutputError{Provider: provider, Message: "no JSON object in response"}
	}

	if err := schemas.ValidatePortfolioJSON(text); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &InvalidOutputError{Provider: provider, Message: "response does not match portfolio schema", Cause: validationErr}
		}
		return nil, &ProviderError{Provider: provider, Message: "schema check failed", Cause: err}
	}

	var wire wirePortfolio
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, &InvalidOutputError{Provider: provider, Message: "failed to unmarshal response JSON", Cause: err}
	}

	record := fromWire(&wire)
	normalizeRecord(record)
	return record, nil
}

// extractJSONObject returns the outermost {...} span of text, or "" if
// there is none. Models occasionally wrap the object in commentary even
// when told not to.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// fromWire maps the wire shape onto the canonical record, preferring
// "school" over "institution" when both are set. Sections absent from the
// JSON stay nil; section presence matters to the scorer.
func fromWire(wire *wirePortfolio) *types.PortfolioData {
	record := &types.PortfolioData{
		PersonalInfo: wire.PersonalInfo,
		Skills:       wire.Skills,
		Experience:   wire.Experience,
		Projects:     wire.Projects,
		Achievements: wire.Achievements,
	}
	if wire.Education != nil {
		record.Education = make([]types.Education, 0, len(wire.Education))
		for _, edu := range wire.Education {
			school := edu.School
			if school == "" {
				school = edu.Institution
			}
			record.Education = append(record.Education, types.Education{
				Degree:      edu.Degree,
				School:      school,
				Year:        edu.Year,
				GPA:         edu.GPA,
				Description: edu.Description,
			})
		}
	}
	return record
}

// normalizeRecord cleans up common model sloppiness: literal "null"
// strings, profile URLs missing a scheme, whitespace padding.
func normalizeRecord(record *types.PortfolioData) {
	info := &record.PersonalInfo
	info.Name = cleanField(info.Name)
	info.Email = cleanField(info.Email)
	info.Phone = cleanField(info.Phone)
	info.Bio = cleanField(info.Bio)
	info.Location = cleanField(info.Location)
	info.LinkedIn = normalizeURL(cleanField(info.LinkedIn))
	info.GitHub = normalizeURL(cleanField(info.GitHub))
	info.Portfolio = normalizeURL(cleanField(info.Portfolio))

	if record.Skills != nil {
		skills := make([]string, 0, len(record.Skills))
		for _, s := range record.Skills {
			if cleaned := cleanField(s); cleaned != "" {
				skills = append(skills, cleaned)
			}
		}
		record.Skills = skills
	}
}

// cleanField trims whitespace and collapses the "null"/"N/A" strings
// models emit for missing values into an empty string.
func cleanField(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "null", "none", "n/a", "not specified":
		return ""
	}
	return value
}

// normalizeURL prefixes bare domains with https:// and clears values that
// cannot be a URL at all.
func normalizeURL(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if strings.Contains(value, ".") && !strings.ContainsAny(value, " \t") {
		return "https://" + value
	}
	return ""
}
