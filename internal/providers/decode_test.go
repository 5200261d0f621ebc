package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecordJSON = `{
	"personal_info": {
		"name": "Jane Doe",
		"email": "jane@example.com",
		"phone": "555-0100",
		"linkedin": "linkedin.com/in/janedoe",
		"github": "https://github.com/janedoe",
		"portfolio": "",
		"bio": "Backend engineer",
		"location": "Seattle, WA"
	},
	"skills": ["Go", "PostgreSQL", "  ", "null"],
	"experience": [
		{
			"role": "Engineer",
			"company": "Acme",
			"start_date": "2020-01",
			"end_date": "Present",
			"description": "Built services handling millions of requests per day."
		}
	],
	"education": [
		{
			"degree": "BS Computer Science",
			"institution": "State University",
			"year": "2019"
		}
	],
	"projects": [],
	"achievements": []
}`

func TestDecodeRecord(t *testing.T) {
	record, err := decodeRecord("gemini", validRecordJSON)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", record.PersonalInfo.Name)
	assert.Equal(t, "jane@example.com", record.PersonalInfo.Email)
	// bare domain gets a scheme
	assert.Equal(t, "https://linkedin.com/in/janedoe", record.PersonalInfo.LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", record.PersonalInfo.GitHub)
	// blank and "null" skills are dropped
	assert.Equal(t, []string{"Go", "PostgreSQL"}, record.Skills)
	// "institution" maps onto School
	require.Len(t, record.Education, 1)
	assert.Equal(t, "State University", record.Education[0].School)
}

func TestDecodeRecordSalvage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "markdown fenced",
			raw:  "```json\n" + validRecordJSON + "\n```",
		},
		{
			name: "surrounding prose",
			raw:  "Here is the extracted data:\n" + validRecordJSON + "\nLet me know if you need anything else.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := decodeRecord("groq", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe", record.PersonalInfo.Name)
		})
	}
}

func TestDecodeRecordInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "no JSON at all",
			raw:  "I could not parse that resume, sorry.",
		},
		{
			name: "empty response",
			raw:  "",
		},
		{
			name: "missing personal_info",
			raw:  `{"skills": ["Go"]}`,
		},
		{
			name: "wrong skills type",
			raw:  `{"personal_info": {"name": "Jane"}, "skills": "Go, SQL"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := decodeRecord("mistral", tt.raw)
			assert.Nil(t, record)

			var invalid *InvalidOutputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "mistral", invalid.Provider)
		})
	}
}

func TestDecodeRecordAbsentSectionsStayNil(t *testing.T) {
	record, err := decodeRecord("gemini", `{"personal_info": {"name": "Jane Doe", "email": "jane@example.com"}}`)
	require.NoError(t, err)

	assert.Nil(t, record.Skills)
	assert.Nil(t, record.Experience)
	assert.Nil(t, record.Education)
	assert.Nil(t, record.Projects)
	assert.Nil(t, record.Achievements)
}

func TestCleanField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims whitespace", input: "  Jane  ", expected: "Jane"},
		{name: "null literal", input: "null", expected: ""},
		{name: "null mixed case", input: "None", expected: ""},
		{name: "not applicable", input: "N/A", expected: ""},
		{name: "not specified", input: "not specified", expected: ""},
		{name: "real value untouched", input: "Seattle, WA", expected: "Seattle, WA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanField(tt.input))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already https", input: "https://github.com/janedoe", expected: "https://github.com/janedoe"},
		{name: "already http", input: "http://example.com", expected: "http://example.com"},
		{name: "bare domain", input: "github.com/janedoe", expected: "https://github.com/janedoe"},
		{name: "not a URL", input: "ask me for it", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeURL(tt.input))
		})
	}
}
