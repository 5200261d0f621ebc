package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata describes an ingested resume document
type Metadata struct {
	SourcePath string `json:"source_path,omitempty"`
	Format     string `json:"format"`    // pdf, html, text
	Timestamp  string `json:"timestamp"` // RFC3339
	Hash       string `json:"hash"`      // SHA256 hex digest of the cleaned text
	CharCount  int    `json:"char_count"`
	WordCount  int    `json:"word_count"`
}

// NewMetadata creates Metadata for cleaned document text
func NewMetadata(content, sourcePath, format string) *Metadata {
	return &Metadata{
		SourcePath: sourcePath,
		Format:     format,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       computeHash(content),
		CharCount:  len(content),
		WordCount:  len(strings.Fields(content)),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
