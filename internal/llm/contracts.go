package llm

import (
	"context"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

// Generator is a hosted text-generation model. The model id is bound at construction.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// FailureKind classifies why an analysis produced no usable fields.
type FailureKind string

const (
	FailureInvocation FailureKind = "invocation" // the model call itself failed
	FailureMalformed  FailureKind = "malformed"  // the model answered with unusable output
	FailureEmptyInput FailureKind = "empty_input"
	FailureExtraction FailureKind = "extraction" // no text was available to analyze
)

// Failure explains a failed analysis with a remediation hint for the user.
type Failure struct {
	Kind   FailureKind
	Reason string
	Hint   string
}

// Outcome is either Ok(fields) or Failed(reason).
type Outcome struct {
	result  entity.AnalysisResult
	failure *Failure
}

func Ok(r entity.AnalysisResult) Outcome {
	return Outcome{result: r}
}

func Failed(f Failure) Outcome {
	return Outcome{failure: &f}
}

func (o Outcome) IsOk() bool { return o.failure == nil }

// Result returns the parsed fields when the outcome is Ok.
func (o Outcome) Result() (entity.AnalysisResult, bool) {
	return o.result, o.failure == nil
}

// Failure returns the failure details when the outcome is Failed.
func (o Outcome) Failure() (Failure, bool) {
	if o.failure == nil {
		return Failure{}, false
	}
	return *o.failure, true
}

// Lower converts the outcome into the sentinel-shaped AnalysisResult used by
// the JSON API: failures fill every scalar and list with the same sentinel and
// explain themselves in insights.
func (o Outcome) Lower() entity.AnalysisResult {
	if o.failure == nil {
		return o.result
	}
	return SentinelResult(*o.failure)
}

// SentinelResult is the lowered form of a failure.
func SentinelResult(f Failure) entity.AnalysisResult {
	s := constants.SentinelError
	if f.Kind == FailureInvocation {
		s = constants.SentinelUnavailable
	}
	insights := []string{"Analysis failed: " + f.Reason}
	if f.Hint != "" {
		insights = append(insights, "Suggestion: "+f.Hint)
	}
	return entity.AnalysisResult{
		Lessors:  []string{s},
		Lessees:  []string{s},
		Acreage:  s,
		Depths:   s,
		Term:     s,
		Royalty:  s,
		Insights: insights,
	}
}

// ExtractionFailed is the outcome recorded for a file whose text could not be extracted.
func ExtractionFailed(reason string) Outcome {
	return Failed(Failure{
		Kind:   FailureExtraction,
		Reason: reason,
		Hint:   "check that the file is a readable lease document and try again",
	})
}
