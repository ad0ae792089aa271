package entity

import (
	"time"

	"github.com/google/uuid"
)

// Contract is the per-file outcome of lease intake. One is produced for every
// uploaded file, including files that failed.
type Contract struct {
	ID            uuid.UUID      `json:"id"`
	FileName      string         `json:"fileName"`
	UploadedAt    time.Time      `json:"uploadedAt"`
	ExtractedText string         `json:"extractedText"`
	Analysis      AnalysisResult `json:"analysis"`
	StorageKey    string         `json:"storageKey,omitempty"`
	Method        string         `json:"method,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Failed reports whether the contract carries a processing error.
func (c Contract) Failed() bool {
	return c.Error != ""
}

// AnalysisResult is the structured lease analysis in its external (sentinel) form.
type AnalysisResult struct {
	Lessors  []string `json:"lessors"`
	Lessees  []string `json:"lessees"`
	Acreage  string   `json:"acreage"`
	Depths   string   `json:"depths"`
	Term     string   `json:"term"`
	Royalty  string   `json:"royalty"`
	Insights []string `json:"insights"`
}
