package providers

import (
	"github.com/dchen/portfolio-engine/internal/prompts"
)

// buildExtractionPrompt constructs the shared chain-of-thought extraction
// prompt. Every adapter sends the same prompt so candidate records from
// different backends stay comparable.
func buildExtractionPrompt(resumeText string) string {
	template := prompts.MustGet("extraction.json", "extract-portfolio")
	return prompts.Format(template, map[string]string{
		"ResumeText": resumeText,
	})
}
