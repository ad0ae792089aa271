package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/storage"
)

type Config struct {
	PollInterval     time.Duration // default 3s
	MaxAttempts      int           // default 100
	JobTimeout       time.Duration // 0 = bounded by attempts only
	FallbackMaxBytes int64         // PDFs under this size retry synchronously, default 5 MB
}

type Extractor struct {
	cfg    Config
	ocr    Service
	store  storage.ObjectStore
	now    func() time.Time
	logger *slog.Logger
}

func NewExtractor(cfg Config, svc Service, store storage.ObjectStore, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.FallbackMaxBytes <= 0 {
		cfg.FallbackMaxBytes = 5 << 20
	}
	return &Extractor{cfg: cfg, ocr: svc, store: store, now: time.Now, logger: logger}
}

// Extract picks a strategy based on the declared MIME type. Failures are
// returned as *common.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, file entity.UploadedFile) (Result, error) {
	start := time.Now()
	mimeType := constants.BaseMIME(file.MIMEType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = constants.MIMEForName(file.Name)
	}
	e.logger.Debug("ocr.extract.start", "file", file.Name, "mime", mimeType, "bytes", len(file.Content))

	var (
		res Result
		err error
	)
	switch mimeType {
	case constants.MIMEPlainText:
		res = e.extractDirect(file)
	case constants.MIMEPDF:
		res, err = e.extractPDF(ctx, file)
	default:
		res, err = e.extractSync(ctx, file)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract.failed",
			"file", file.Name,
			"error", err,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, err
	}

	res.Quality = blendConfidence(res.Quality, Quality(res.Text))
	e.logger.Info("ocr.extract.ok",
		"file", file.Name,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"quality", res.Quality,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractDirect(file entity.UploadedFile) Result {
	raw := file.Content
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		text = strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return Result{
		Text:   Normalize(text),
		Method: constants.MethodDirect,
		Pages:  1,
	}
}

// extractPDF runs the async bucket path and falls back to the sync path for small files.
func (e *Extractor) extractPDF(ctx context.Context, file entity.UploadedFile) (Result, error) {
	res, err := e.extractAsync(ctx, file)
	if err == nil {
		return res, nil
	}
	key := res.StorageKey

	size := fileSize(file)
	if size >= e.cfg.FallbackMaxBytes {
		return res, err
	}

	e.logger.Warn("ocr.extract.fallback_sync",
		"file", file.Name,
		"bytes", size,
		"async_error", err,
	)
	syncRes, syncErr := e.extractSync(ctx, file)
	syncRes.StorageKey = key
	if syncErr != nil {
		return syncRes, &common.ExtractionError{
			FileName:   file.Name,
			Method:     constants.MethodSyncOCR,
			StorageKey: key,
			Err:        fmt.Errorf("sync fallback: %w; async attempt: %w", unwrapCause(syncErr), unwrapCause(err)),
		}
	}
	syncRes.Warnings = append(syncRes.Warnings, "async OCR failed, used sync fallback: "+unwrapCause(err).Error())
	return syncRes, nil
}

func (e *Extractor) extractSync(ctx context.Context, file entity.UploadedFile) (Result, error) {
	fail := func(err error) (Result, error) {
		return Result{Method: constants.MethodSyncOCR}, &common.ExtractionError{
			FileName: file.Name,
			Method:   constants.MethodSyncOCR,
			Err:      err,
		}
	}

	blocks, err := e.ocr.DetectText(ctx, file.Content)
	if err != nil {
		return fail(fmt.Errorf("detect text: %w", err))
	}
	lines, conf := lineText(blocks)
	if len(lines) == 0 {
		return fail(fmt.Errorf("no text detected"))
	}
	return Result{
		Text:    joinLines(lines),
		Method:  constants.MethodSyncOCR,
		Pages:   1,
		Quality: conf,
	}, nil
}

func fileSize(file entity.UploadedFile) int64 {
	if n := int64(len(file.Content)); n > 0 {
		return n
	}
	return file.Size
}

func unwrapCause(err error) error {
	if ee, ok := err.(*common.ExtractionError); ok && ee.Err != nil {
		return ee.Err
	}
	return err
}
