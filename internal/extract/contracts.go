// Package extract declares the two stages a lease document goes through.
package extract

import (
	"context"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/llm"
	"github.com/joseph-ayodele/lease-intake/internal/ocr"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, file entity.UploadedFile) (ocr.Result, error)
}

// Analyzer is Stage 2: text -> lease fields. It never fails; failures are
// carried inside the Outcome.
type Analyzer interface {
	Analyze(ctx context.Context, text, fileName string) llm.Outcome
}

var (
	_ TextExtractor = (*ocr.Extractor)(nil)
	_ Analyzer      = (*llm.Analyzer)(nil)
)
