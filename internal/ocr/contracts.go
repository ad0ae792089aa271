package ocr

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/lease-intake/constants"
)

// ErrInvalidJob is returned by Service.GetDetection when the job id is unknown or expired.
var ErrInvalidJob = errors.New("ocr job id is no longer valid")

// ErrJobTimeout is returned when polling exhausts its attempts or deadline.
var ErrJobTimeout = errors.New("ocr job did not finish in time")

// Block is one detected element. Only LINE blocks carry text we use.
type Block struct {
	Type       string
	Text       string
	Confidence float64 // 0..100 as reported by the engine
}

// Page is one response of an async detection job.
type Page struct {
	Status        constants.JobStatus
	StatusMessage string
	Blocks        []Block
	NextToken     string
	DocumentPages int
}

// Service is the OCR backend.
type Service interface {
	DetectText(ctx context.Context, content []byte) ([]Block, error)
	StartDetection(ctx context.Context, bucket, key string) (string, error)
	GetDetection(ctx context.Context, jobID, nextToken string) (Page, error)
}

// Result is the text extracted from one file.
type Result struct {
	Text       string
	Method     string // constants.MethodDirect | MethodSyncOCR | MethodAsyncOCR
	Pages      int
	StorageKey string // set when the file was uploaded to the bucket
	Quality    float64
	Duration   time.Duration
	Warnings   []string
}
