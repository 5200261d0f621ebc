package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePortfolioJSON_Valid(t *testing.T) {
	doc := `{
		"personal_info": {"name": "Jane Doe", "email": "jane@example.com"},
		"skills": ["Go", "Rust"],
		"experience": [{"role": "Engineer", "company": "Acme", "start_date": "Jan 2020", "end_date": "Present", "description": "Built systems"}],
		"education": [],
		"projects": [],
		"achievements": []
	}`

	assert.NoError(t, ValidatePortfolioJSON(doc))
}

func TestValidatePortfolioJSON_MissingPersonalInfo(t *testing.T) {
	doc := `{"skills": ["Go"]}`

	err := ValidatePortfolioJSON(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidatePortfolioJSON_WrongSkillsType(t *testing.T) {
	doc := `{
		"personal_info": {"name": "Jane Doe"},
		"skills": "Go, Rust"
	}`

	err := ValidatePortfolioJSON(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidatePortfolioJSON_NullableSections(t *testing.T) {
	// Providers sometimes return null instead of empty arrays; the schema
	// tolerates this and salvage normalizes it later.
	doc := `{
		"personal_info": {"name": "Jane Doe", "email": "jane@example.com"},
		"skills": null,
		"experience": null
	}`

	assert.NoError(t, ValidatePortfolioJSON(doc))
}

func TestValidateJSONString_SchemaLoadError(t *testing.T) {
	err := ValidateJSONString(`{not a schema`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "skills", Message: "Invalid type"},
	}}
	assert.Contains(t, ve.Error(), "skills")
	assert.Contains(t, ve.Error(), "Invalid type")
}
