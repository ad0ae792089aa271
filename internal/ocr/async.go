package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/storage"
)

// maxResultPages guards against a backend that never stops returning tokens.
const maxResultPages = 1000

// extractAsync uploads the file, starts a detection job and polls it to completion.
// The returned Result carries the storage key even on failure once the upload succeeded.
func (e *Extractor) extractAsync(ctx context.Context, file entity.UploadedFile) (Result, error) {
	res := Result{Method: constants.MethodAsyncOCR}
	fail := func(err error) (Result, error) {
		return res, &common.ExtractionError{
			FileName:   file.Name,
			Method:     constants.MethodAsyncOCR,
			StorageKey: res.StorageKey,
			Err:        err,
		}
	}

	key := storage.ObjectKey(e.now(), file.Name)
	if err := e.store.Put(ctx, key, file.Content, constants.MIMEPDF); err != nil {
		return fail(fmt.Errorf("upload: %w", err))
	}
	res.StorageKey = key

	jobID, err := e.ocr.StartDetection(ctx, e.store.Bucket(), key)
	if err != nil {
		return fail(fmt.Errorf("start detection: %w", err))
	}
	if jobID == "" {
		return fail(errors.New("start detection returned no job id"))
	}
	e.logger.Info("ocr.async.started", "file", file.Name, "key", key, "job_id", jobID)

	blocks, pages, err := e.pollJob(ctx, jobID)
	if err != nil {
		return fail(err)
	}
	lines, conf := lineText(blocks)
	if len(lines) == 0 {
		return fail(fmt.Errorf("job %s: no text detected", jobID))
	}
	res.Text = joinLines(lines)
	res.Pages = pages
	res.Quality = conf
	return res, nil
}

// pollJob waits PollInterval between status checks, up to MaxAttempts checks.
// The SUCCEEDED response is the first result page; later pages follow NextToken.
func (e *Extractor) pollJob(ctx context.Context, jobID string) ([]Block, int, error) {
	if e.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.JobTimeout)
		defer cancel()
	}

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err := wait(ctx, e.cfg.PollInterval); err != nil {
			return nil, 0, fmt.Errorf("job %s: %w after %d polls: %w", jobID, ErrJobTimeout, attempt-1, err)
		}

		page, err := e.ocr.GetDetection(ctx, jobID, "")
		if err != nil {
			if errors.Is(err, ErrInvalidJob) {
				return nil, 0, fmt.Errorf("job %s: %w", jobID, err)
			}
			if ctx.Err() != nil {
				return nil, 0, fmt.Errorf("job %s: %w: %w", jobID, ErrJobTimeout, ctx.Err())
			}
			e.logger.Warn("ocr.async.poll_error", "job_id", jobID, "attempt", attempt, "error", err)
			continue
		}

		switch page.Status {
		case constants.JobStatusSucceeded, constants.JobStatusPartialSuccess:
			if page.Status == constants.JobStatusPartialSuccess {
				e.logger.Warn("ocr.async.partial_success", "job_id", jobID, "message", page.StatusMessage)
			}
			e.logger.Debug("ocr.async.succeeded", "job_id", jobID, "attempt", attempt)
			return e.collectPages(ctx, jobID, page)
		case constants.JobStatusFailed:
			msg := page.StatusMessage
			if msg == "" {
				msg = "no status message"
			}
			return nil, 0, fmt.Errorf("job %s failed: %s", jobID, msg)
		default:
			e.logger.Debug("ocr.async.poll", "job_id", jobID, "attempt", attempt, "status", page.Status)
		}
	}
	return nil, 0, fmt.Errorf("job %s: %w after %d polls", jobID, ErrJobTimeout, e.cfg.MaxAttempts)
}

func (e *Extractor) collectPages(ctx context.Context, jobID string, first Page) ([]Block, int, error) {
	blocks := append([]Block(nil), first.Blocks...)
	token := first.NextToken
	for n := 1; token != ""; n++ {
		if n >= maxResultPages {
			return nil, 0, fmt.Errorf("job %s: more than %d result pages", jobID, maxResultPages)
		}
		page, err := e.ocr.GetDetection(ctx, jobID, token)
		if err != nil {
			return nil, 0, fmt.Errorf("job %s: fetch result page %d: %w", jobID, n+1, err)
		}
		blocks = append(blocks, page.Blocks...)
		token = page.NextToken
	}
	return blocks, max(first.DocumentPages, 1), nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
