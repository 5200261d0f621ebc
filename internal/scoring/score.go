// Package scoring rates candidate portfolio records on a deterministic
// 0-100 scale so the orchestrator can decide when a candidate is good
// enough to stop trying further providers.
package scoring

import (
	"regexp"
	"strings"
	"time"

	"github.com/dchen/portfolio-engine/internal/types"
)

// Band maxima. The four bands always sum to 100.
const (
	IdentityMax    = 40.0
	FormatMax      = 30.0
	StructureMax   = 20.0
	ConsistencyMax = 10.0
)

// Breakdown carries the per-band sub-scores for observability. The four
// fields sum to Total.
type Breakdown struct {
	Identity    float64 `json:"identity"`
	Format      float64 `json:"format"`
	Structure   float64 `json:"structure"`
	Consistency float64 `json:"consistency"`
	Total       float64 `json:"total"`
}

var emailShapeRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Score rates a record in [0,100]. Same input always produces the same
// output. A record missing both name and email scores exactly 0; without
// at least one identity anchor the rest of the record is unusable.
func Score(record *types.PortfolioData) float64 {
	return ScoreWithBreakdown(record).Total
}

// ScoreWithBreakdown is Score plus the per-band sub-scores.
func ScoreWithBreakdown(record *types.PortfolioData) Breakdown {
	if record == nil {
		return Breakdown{}
	}

	nameOK := len(strings.TrimSpace(record.PersonalInfo.Name)) > 2
	emailOK := hasEmailAnchor(record.PersonalInfo.Email)
	if !nameOK && !emailOK {
		return Breakdown{}
	}

	b := Breakdown{
		Identity:    identityScore(nameOK, emailOK),
		Format:      formatScore(record),
		Structure:   structureScore(record),
		Consistency: consistencyScore(record),
	}
	b.Total = b.Identity + b.Format + b.Structure + b.Consistency
	return b
}

// hasEmailAnchor is the minimal usability check: an "@" with a dotted,
// non-empty domain. The stricter shape check lives in the format band.
func hasEmailAnchor(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	return domain != "" && strings.Contains(domain, ".")
}

func identityScore(nameOK, emailOK bool) float64 {
	score := 0.0
	if nameOK {
		score += 20
	}
	if emailOK {
		score += 20
	}
	return score
}

// formatScore checks the shape of whatever data the record declares.
// Checks over absent data earn nothing; an empty record must not
// collect format points it never demonstrated.
func formatScore(record *types.PortfolioData) float64 {
	score := 0.0

	if emailShapeRe.MatchString(strings.TrimSpace(record.PersonalInfo.Email)) {
		score += 10
	}

	if len(record.Experience) > 0 {
		startDatesOK := true
		rolesOK := true
		for _, exp := range record.Experience {
			if strings.TrimSpace(exp.StartDate) == "" {
				startDatesOK = false
			}
			if strings.TrimSpace(exp.Role) == "" || strings.TrimSpace(exp.Company) == "" {
				rolesOK = false
			}
		}
		if startDatesOK {
			score += 5
		}
		if rolesOK {
			score += 5
		}
	}

	if len(record.Education) > 0 {
		educationOK := true
		for _, edu := range record.Education {
			if strings.TrimSpace(edu.Degree) == "" || strings.TrimSpace(edu.School) == "" {
				educationOK = false
				break
			}
		}
		if educationOK {
			score += 5
		}
	}

	urls := []string{record.PersonalInfo.LinkedIn, record.PersonalInfo.GitHub, record.PersonalInfo.Portfolio}
	declared := 0
	urlsOK := true
	for _, url := range urls {
		if url == "" {
			continue
		}
		declared++
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			urlsOK = false
		}
	}
	if declared > 0 && urlsOK {
		score += 5
	}

	return score
}

func structureScore(record *types.PortfolioData) float64 {
	score := 0.0

	if len(record.Experience) > 0 {
		described := 0
		for _, exp := range record.Experience {
			if len(exp.Description) > 20 {
				described++
			}
		}
		score += 10 * float64(described) / float64(len(record.Experience))
	}

	if len(record.Skills) > 0 {
		allValid := true
		for _, skill := range record.Skills {
			if strings.TrimSpace(skill) == "" {
				allValid = false
				break
			}
		}
		if allValid {
			score += 5
		}
	}

	if record.SectionsPresent() == types.SectionCount {
		score += 5
	}

	return score
}

// consistencyScore, like formatScore, only rewards data that exists.
func consistencyScore(record *types.PortfolioData) float64 {
	score := 0.0

	if len(record.Skills) > 0 {
		seen := make(map[string]bool, len(record.Skills))
		duplicates := false
		for _, skill := range record.Skills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if seen[key] {
				duplicates = true
				break
			}
			seen[key] = true
		}
		if !duplicates {
			score += 5
		}
	}

	if (len(record.Experience) > 0 || len(record.Education) > 0) && datesSane(record) {
		score += 5
	}

	return score
}

// datesSane checks every experience date pair for chronological order,
// rejects end dates in the future unless the entry is marked ongoing, and
// rejects education years far in the future. Unparseable dates pass;
// free-text dates are a format concern, not a consistency one.
func datesSane(record *types.PortfolioData) bool {
	now := time.Now()
	for _, exp := range record.Experience {
		if exp.Ongoing() {
			continue
		}
		start, startOK := parseLooseDate(exp.StartDate)
		end, endOK := parseLooseDate(exp.EndDate)
		if startOK && endOK && end.Before(start) {
			return false
		}
		if endOK && end.After(now.AddDate(0, 1, 0)) {
			return false
		}
	}
	for _, edu := range record.Education {
		// expected-graduation years sit a few years out, so only
		// implausibly distant ones count against the record
		if year, ok := parseLooseDate(edu.Year); ok && year.After(now.AddDate(5, 0, 0)) {
			return false
		}
	}
	return true
}

var looseDateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	"Jan 2006",
	"January 2006",
	"01/2006",
}

func parseLooseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
