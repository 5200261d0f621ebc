package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaEmbedsAllTables(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS parse_runs")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS parse_attempts")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS artifacts")
}

func TestArtifactSteps(t *testing.T) {
	steps := map[string]bool{StepRecord: true, StepSuggestions: true, StepReport: true}
	assert.Len(t, steps, 3, "artifact steps must be distinct")
}
