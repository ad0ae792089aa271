// Package pipeline turns a batch of uploaded lease documents into contracts.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/extract"
	"github.com/joseph-ayodele/lease-intake/internal/llm"
	"github.com/joseph-ayodele/lease-intake/internal/rules"
	"github.com/joseph-ayodele/lease-intake/internal/storage"
)

const cleanupTimeout = 30 * time.Second

// Processor coordinates text extraction then analysis for every file of a batch.
type Processor struct {
	extractor extract.TextExtractor
	analyzer  extract.Analyzer
	store     storage.ObjectStore // nil disables storage cleanup
	limits    rules.Limits
	now       func() time.Time
	logger    *slog.Logger

	cleanups sync.WaitGroup
}

func NewProcessor(
	extractor extract.TextExtractor,
	analyzer extract.Analyzer,
	store storage.ObjectStore,
	limits rules.Limits,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxFileBytes <= 0 || len(limits.AllowedExtensions) == 0 {
		limits = rules.DefaultLimits()
	}
	return &Processor{
		extractor: extractor,
		analyzer:  analyzer,
		store:     store,
		limits:    limits,
		now:       time.Now,
		logger:    logger,
	}
}

// Process validates the whole batch, then extracts and analyzes every file
// concurrently. It returns exactly one contract per file, in input order. The
// only error is a *common.BatchValidationError raised before any work starts.
func (p *Processor) Process(ctx context.Context, files []entity.UploadedFile) ([]entity.Contract, error) {
	log := common.LoggerFromContext(ctx, p.logger)
	if err := rules.ValidateBatch(files, p.limits); err != nil {
		log.Warn("processor.validate.rejected", "files", len(files), "error", err)
		return nil, err
	}

	start := time.Now()
	log.Info("processor.batch.start", "files", len(files))

	out := make([]entity.Contract, len(files))
	var g errgroup.Group
	// Submission follows priority; completion order is up to the scheduler.
	// A panicking file still yields its contract; the group reports the first panic.
	for _, i := range submissionOrder(files) {
		g.Go(func() error {
			var err error
			out[i], err = p.processFile(ctx, files[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("processor.batch.panicked", "error", err)
	}

	log.Info("processor.batch.done",
		"files", len(files),
		"failed", countFailed(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ProcessDetailed is Process plus summary statistics for the batch.
func (p *Processor) ProcessDetailed(ctx context.Context, files []entity.UploadedFile) ([]entity.Contract, BatchStats, error) {
	contracts, err := p.Process(ctx, files)
	if err != nil {
		return nil, BatchStats{}, err
	}
	return contracts, Summarize(contracts), nil
}

// submissionOrder returns file indexes by descending priority, ties by input order.
func submissionOrder(files []entity.UploadedFile) []int {
	idx := make([]int, len(files))
	prio := make([]int, len(files))
	for i, f := range files {
		idx[i] = i
		prio[i] = rules.Priority(f)
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(prio[b], prio[a])
	})
	return idx
}

// processFile never fails for ordinary extraction or analysis problems; those
// live in the contract. The error is set only for a recovered panic.
func (p *Processor) processFile(ctx context.Context, f entity.UploadedFile) (c entity.Contract, panicErr error) {
	log := common.LoggerFromContext(ctx, p.logger).With("file", f.Name)
	c = p.newContract(f)

	defer func() {
		if r := recover(); r != nil {
			log.Error("processor.file.panic", "panic", r, "stack", string(debug.Stack()))
			panicErr = fmt.Errorf("file %q: internal error: %v", f.Name, r)
			c = failedContract(c, fmt.Errorf("internal error: %v", r))
		}
	}()

	res, err := p.extractor.Extract(ctx, f)
	if err != nil {
		var ee *common.ExtractionError
		if errors.As(err, &ee) {
			c.Method = ee.Method
			c.StorageKey = ee.StorageKey
		}
		if c.StorageKey == "" {
			c.StorageKey = res.StorageKey
		}
		log.Warn("processor.extract.failed", "error", err, "storage_key", c.StorageKey)
		return failedContract(c, err), nil
	}

	c.ExtractedText = res.Text
	c.Method = res.Method
	c.StorageKey = res.StorageKey

	outcome := p.analyzer.Analyze(ctx, res.Text, f.Name)
	c.Analysis = outcome.Lower()
	if fail, failed := outcome.Failure(); failed {
		c.Error = fmt.Sprintf("analysis %s: %s", fail.Kind, fail.Reason)
		log.Warn("processor.analyze.failed", "kind", fail.Kind, "reason", fail.Reason)
		return c, nil
	}
	log.Info("processor.file.ok", "method", c.Method, "chars", len(c.ExtractedText))
	return c, nil
}

func (p *Processor) newContract(f entity.UploadedFile) entity.Contract {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return entity.Contract{
		ID:         id,
		FileName:   f.Name,
		UploadedAt: p.now().UTC(),
	}
}

// failedContract gives c the error-sentinel shape for a file that produced no text.
func failedContract(c entity.Contract, err error) entity.Contract {
	c.ExtractedText = constants.ErrorTextPrefix + err.Error()
	c.Analysis = llm.ExtractionFailed(err.Error()).Lower()
	c.Error = err.Error()
	return c
}

func countFailed(contracts []entity.Contract) int {
	n := 0
	for _, c := range contracts {
		if c.Failed() {
			n++
		}
	}
	return n
}

// DeleteContract schedules removal of the contract's stored object and
// returns immediately. Failures are logged and never retried.
func (p *Processor) DeleteContract(ctx context.Context, c entity.Contract) {
	if c.StorageKey == "" || p.store == nil {
		return
	}
	log := common.LoggerFromContext(ctx, p.logger)
	bg := context.WithoutCancel(ctx)

	p.cleanups.Add(1)
	go func() {
		defer p.cleanups.Done()
		cctx, cancel := context.WithTimeout(bg, cleanupTimeout)
		defer cancel()

		if err := p.store.Delete(cctx, c.StorageKey); err != nil {
			cerr := &common.StorageCleanupError{Key: c.StorageKey, Err: err}
			log.Error("processor.cleanup.failed", "contract_id", c.ID, "error", cerr)
			return
		}
		log.Info("processor.cleanup.ok", "contract_id", c.ID, "key", c.StorageKey)
	}()
}

// Close waits for scheduled cleanups or until ctx is done.
func (p *Processor) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.cleanups.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
