package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/llm"
	"github.com/joseph-ayodele/lease-intake/internal/ocr"
	"github.com/joseph-ayodele/lease-intake/internal/rules"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	fn    func(f entity.UploadedFile) (ocr.Result, error)
}

func (f *fakeExtractor) Extract(_ context.Context, file entity.UploadedFile) (ocr.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(file)
	}
	return ocr.Result{Text: "lease text of " + file.Name, Method: constants.MethodDirect}, nil
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	outcome llm.Outcome
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _, _ string) llm.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.outcome
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
	block     chan struct{}
}

func (s *fakeStore) Bucket() string { return "bucket" }

func (s *fakeStore) Put(_ context.Context, key string, body []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects != nil {
		s.objects[key] = body
	}
	return nil
}

func (s *fakeStore) object(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}

// bucketOCR answers every async job with the bytes stored under the job's key.
type bucketOCR struct {
	store *fakeStore
}

func (b bucketOCR) DetectText(context.Context, []byte) ([]ocr.Block, error) {
	return nil, errors.New("unexpected sync detection")
}

func (b bucketOCR) StartDetection(_ context.Context, _, key string) (string, error) {
	return key, nil
}

func (b bucketOCR) GetDetection(_ context.Context, jobID, _ string) (ocr.Page, error) {
	return ocr.Page{
		Status: constants.JobStatusSucceeded,
		Blocks: []ocr.Block{{Type: constants.BlockTypeLine, Text: string(b.store.object(jobID)), Confidence: 99}},
	}, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return s.deleteErr
}

func (s *fakeStore) Exists(context.Context, string) (bool, error) { return false, nil }

func goodAnalysis() entity.AnalysisResult {
	return entity.AnalysisResult{
		Lessors:  []string{"John Smith"},
		Lessees:  []string{"XYZ Oil"},
		Acreage:  "160 acres",
		Depths:   "All depths",
		Term:     "5 years",
		Royalty:  "1/8",
		Insights: []string{"Standard form"},
	}
}

func file(name string, size int64) entity.UploadedFile {
	return entity.UploadedFile{
		Name:     name,
		Size:     size,
		MIMEType: constants.MIMEForName(name),
		Content:  bytes.Repeat([]byte("x"), int(min(size, 16))),
	}
}

func TestProcessOneFailureAmongThree(t *testing.T) {
	ex := &fakeExtractor{fn: func(f entity.UploadedFile) (ocr.Result, error) {
		if f.Name == "bad.pdf" {
			return ocr.Result{}, &common.ExtractionError{FileName: f.Name, Method: constants.MethodAsyncOCR, Err: errors.New("textract job failed")}
		}
		return ocr.Result{Text: "text " + f.Name, Method: constants.MethodDirect}, nil
	}}
	an := &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}
	p := NewProcessor(ex, an, nil, rules.DefaultLimits(), nil)

	files := []entity.UploadedFile{file("a.txt", 10), file("bad.pdf", 100), file("c.png", 50)}
	out, stats, err := p.ProcessDetailed(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, c := range out {
		assert.Equal(t, files[i].Name, c.FileName)
		assert.NotEqual(t, uuid.Nil, c.ID)
	}

	bad := out[1]
	assert.True(t, bad.Failed())
	assert.True(t, strings.HasPrefix(bad.ExtractedText, constants.ErrorTextPrefix))
	for _, v := range []string{bad.Analysis.Acreage, bad.Analysis.Depths, bad.Analysis.Term, bad.Analysis.Royalty} {
		assert.Equal(t, constants.SentinelError, v)
	}
	assert.NotEmpty(t, bad.Analysis.Insights)
	assert.Equal(t, constants.MethodAsyncOCR, bad.Method)

	assert.Equal(t, goodAnalysis(), out[0].Analysis)
	assert.Equal(t, goodAnalysis(), out[2].Analysis)
	assert.Equal(t, 2, an.calls)

	assert.Equal(t, BatchStats{Total: 3, Succeeded: 2, Failed: 1, AverageQuality: 200.0 / 3, HighRisk: 0}, stats)
}

func TestProcessRejectsBatchBeforeAnyWork(t *testing.T) {
	ex := &fakeExtractor{}
	an := &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}
	p := NewProcessor(ex, an, nil, rules.DefaultLimits(), nil)

	files := []entity.UploadedFile{file("a.txt", 10), {Name: "", Size: 5, MIMEType: constants.MIMEPlainText}}
	out, err := p.Process(context.Background(), files)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, common.ErrValidation)

	var batch *common.BatchValidationError
	require.ErrorAs(t, err, &batch)
	assert.Len(t, batch.Files, 1)

	assert.Empty(t, ex.calls)
	assert.Zero(t, an.calls)
}

func TestProcessAnalysisFailureKeepsText(t *testing.T) {
	ex := &fakeExtractor{}
	an := &fakeAnalyzer{outcome: llm.Failed(llm.Failure{Kind: llm.FailureInvocation, Reason: "throttled"})}
	p := NewProcessor(ex, an, nil, rules.DefaultLimits(), nil)

	out, err := p.Process(context.Background(), []entity.UploadedFile{file("a.txt", 10)})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "lease text of a.txt", out[0].ExtractedText)
	assert.Equal(t, constants.SentinelUnavailable, out[0].Analysis.Royalty)
	assert.Contains(t, out[0].Error, "throttled")
}

func TestProcessAttachesStorageKey(t *testing.T) {
	ex := &fakeExtractor{fn: func(f entity.UploadedFile) (ocr.Result, error) {
		switch f.Name {
		case "ok.pdf":
			return ocr.Result{Text: "t", Method: constants.MethodAsyncOCR, StorageKey: "contracts/1-ok.pdf"}, nil
		case "late.pdf":
			return ocr.Result{}, &common.ExtractionError{FileName: f.Name, Method: constants.MethodAsyncOCR, StorageKey: "contracts/2-late.pdf", Err: errors.New("no text detected")}
		default:
			return ocr.Result{Text: "t", Method: constants.MethodDirect}, nil
		}
	}}
	p := NewProcessor(ex, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, nil, rules.DefaultLimits(), nil)

	out, err := p.Process(context.Background(), []entity.UploadedFile{file("ok.pdf", 10), file("late.pdf", 10), file("plain.txt", 10)})
	require.NoError(t, err)

	assert.Equal(t, "contracts/1-ok.pdf", out[0].StorageKey)
	assert.Equal(t, "contracts/2-late.pdf", out[1].StorageKey)
	assert.Empty(t, out[2].StorageKey)
}

func TestProcessSameNamedPDFsGetSeparateObjects(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}
	ex := ocr.NewExtractor(ocr.Config{PollInterval: time.Millisecond, MaxAttempts: 5, FallbackMaxBytes: 1 << 20}, bucketOCR{store: store}, store, nil)
	p := NewProcessor(ex, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, store, rules.DefaultLimits(), nil)

	pdf := func(body string) entity.UploadedFile {
		return entity.UploadedFile{Name: "lease.pdf", Size: int64(len(body)), MIMEType: constants.MIMEPDF, Content: []byte(body)}
	}
	out, err := p.Process(context.Background(), []entity.UploadedFile{pdf("north tract lease"), pdf("south tract lease")})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.NotEmpty(t, out[0].StorageKey)
	assert.NotEqual(t, out[0].StorageKey, out[1].StorageKey)
	assert.Len(t, store.objects, 2)
	assert.Equal(t, "north tract lease", out[0].ExtractedText)
	assert.Equal(t, "south tract lease", out[1].ExtractedText)
}

func TestProcessRecoversPanic(t *testing.T) {
	ex := &fakeExtractor{fn: func(f entity.UploadedFile) (ocr.Result, error) {
		if f.Name == "boom.txt" {
			panic("nil map")
		}
		return ocr.Result{Text: "t"}, nil
	}}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := NewProcessor(ex, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, nil, rules.DefaultLimits(), logger)

	out, err := p.Process(context.Background(), []entity.UploadedFile{file("boom.txt", 10), file("fine.txt", 10)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, buf.String(), "processor.batch.panicked")
	assert.Contains(t, buf.String(), `file \"boom.txt\": internal error: nil map`)
	assert.True(t, out[0].Failed())
	assert.Contains(t, out[0].Error, "nil map")
	assert.Equal(t, constants.SentinelError, out[0].Analysis.Term)
	assert.False(t, out[1].Failed())
}

func TestSubmissionOrder(t *testing.T) {
	files := []entity.UploadedFile{
		file("scan.pdf", 25<<20),
		file("photo.png", 1<<10),
		file("notes.txt", 1<<10),
		file("other.txt", 1<<10),
	}
	assert.Equal(t, []int{2, 3, 1, 0}, submissionOrder(files))
}

func TestDeleteContractSchedulesCleanup(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	p := NewProcessor(&fakeExtractor{}, &fakeAnalyzer{}, store, rules.DefaultLimits(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	p.DeleteContract(ctx, entity.Contract{FileName: "a.pdf", StorageKey: "contracts/1-a.pdf"})
	p.DeleteContract(ctx, entity.Contract{FileName: "b.txt"})
	cancel() // caller going away must not abort the cleanup

	close(store.block)
	waitCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	require.NoError(t, p.Close(waitCtx))
	assert.Equal(t, []string{"contracts/1-a.pdf"}, store.deleted)
}

func TestDeleteContractLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := &fakeStore{deleteErr: errors.New("access denied")}
	p := NewProcessor(&fakeExtractor{}, &fakeAnalyzer{}, store, rules.DefaultLimits(), logger)

	p.DeleteContract(context.Background(), entity.Contract{StorageKey: "contracts/1-a.pdf"})
	require.NoError(t, p.Close(context.Background()))

	assert.Contains(t, buf.String(), "processor.cleanup.failed")
	assert.Contains(t, buf.String(), "access denied")
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, BatchStats{}, Summarize(nil))
}
