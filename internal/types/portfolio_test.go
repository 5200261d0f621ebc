package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperienceOngoing(t *testing.T) {
	tests := []struct {
		name     string
		endDate  string
		expected bool
	}{
		{name: "empty end date", endDate: "", expected: true},
		{name: "present", endDate: "Present", expected: true},
		{name: "current", endDate: "current", expected: true},
		{name: "ongoing with spaces", endDate: "  Ongoing ", expected: true},
		{name: "concrete date", endDate: "2023-06", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := Experience{EndDate: tt.endDate}
			assert.Equal(t, tt.expected, exp.Ongoing())
		})
	}
}

func TestEnsureSections(t *testing.T) {
	record := &PortfolioData{}
	record.EnsureSections()

	assert.NotNil(t, record.Skills)
	assert.NotNil(t, record.Experience)
	assert.NotNil(t, record.Education)
	assert.NotNil(t, record.Projects)
	assert.NotNil(t, record.Achievements)
	assert.Equal(t, SectionCount, record.SectionsPresent())
}

func TestSectionsPresent(t *testing.T) {
	record := &PortfolioData{}
	assert.Equal(t, 1, record.SectionsPresent(), "personal info always counts")

	record.Skills = []string{}
	record.Experience = []Experience{}
	assert.Equal(t, 3, record.SectionsPresent(), "empty but non-nil sections count")
}

func TestHasSkill(t *testing.T) {
	record := &PortfolioData{Skills: []string{"Go", "  PostgreSQL "}}

	assert.True(t, record.HasSkill("go"))
	assert.True(t, record.HasSkill("postgresql"))
	assert.False(t, record.HasSkill("Rust"))
}

func TestClone(t *testing.T) {
	original := &PortfolioData{
		PersonalInfo: PersonalInfo{Name: "Jane Doe"},
		Skills:       []string{"Go"},
		Experience:   []Experience{{Role: "Engineer"}},
	}

	clone := original.Clone()
	clone.PersonalInfo.Name = "Changed"
	clone.Skills = append(clone.Skills, "Rust")
	clone.Experience[0].Role = "Manager"

	assert.Equal(t, "Jane Doe", original.PersonalInfo.Name)
	assert.Equal(t, []string{"Go"}, original.Skills)
	// slice elements are copied, not shared
	assert.Equal(t, "Engineer", original.Experience[0].Role)
	assert.Nil(t, original.Education)
	assert.Nil(t, clone.Education, "nil sections stay nil in the clone")
}

func TestCloneNil(t *testing.T) {
	var record *PortfolioData
	assert.Nil(t, record.Clone())
}
