package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-intake/internal/cache"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

type Config struct {
	ModelID        string
	MaxTokens      int           // default 2000
	MaxPromptChars int           // 0 = no limit
	Timeout        time.Duration // per model call, 0 = caller's context only
	CacheTTL       time.Duration
}

// Analyzer turns extracted lease text into an Outcome. It never returns an error.
type Analyzer struct {
	cfg    Config
	gen    Generator
	cache  cache.Client
	logger *slog.Logger
}

// NewAnalyzer builds an Analyzer; c may be nil to disable caching.
func NewAnalyzer(cfg Config, gen Generator, c cache.Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	return &Analyzer{cfg: cfg, gen: gen, cache: c, logger: logger}
}

// Analyze prompts the model with text and parses its JSON answer.
func (a *Analyzer) Analyze(ctx context.Context, text, fileName string) Outcome {
	rid := uuid.New().String()
	start := time.Now()
	log := common.LoggerFromContext(ctx, a.logger)

	if strings.TrimSpace(text) == "" {
		log.Warn("llm.analyze.empty_input", "req_id", rid, "file", fileName)
		return Failed(Failure{
			Kind:   FailureEmptyInput,
			Reason: "no text was extracted from the document",
			Hint:   "upload a clearer scan or a text version of the lease",
		})
	}

	prompt := BuildPrompt(text, fileName, a.cfg.MaxPromptChars)
	key := cacheKey(a.cfg.ModelID, prompt)
	if r, ok := a.fromCache(ctx, key); ok {
		log.Info("llm.analyze.cache_hit", "req_id", rid, "file", fileName)
		return Ok(r)
	}

	log.Info("llm.analyze.start",
		"req_id", rid,
		"file", fileName,
		"model", a.cfg.ModelID,
		"text_len", len(text),
		"max_tokens", a.cfg.MaxTokens,
	)

	callCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	raw, err := a.gen.Generate(callCtx, prompt, a.cfg.MaxTokens)
	if err != nil {
		aerr := &common.AnalysisError{FileName: fileName, Reason: "model invocation failed", Err: err}
		log.Error("llm.analyze.invoke_error",
			"req_id", rid, "error", aerr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Failed(Failure{Kind: FailureInvocation, Reason: err.Error(), Hint: remediationHint(err)})
	}

	result, err := ParseAnalysis(raw, log)
	if err != nil {
		aerr := &common.AnalysisError{FileName: fileName, Reason: "unusable model output", Err: err}
		log.Error("llm.analyze.parse_error",
			"req_id", rid, "error", aerr, "raw_len", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Failed(Failure{
			Kind:   FailureMalformed,
			Reason: "the model response was not valid analysis JSON: " + err.Error(),
			Hint:   "retry the analysis; if it keeps failing try a different model",
		})
	}

	a.toCache(ctx, key, result)
	log.Info("llm.analyze.ok",
		"req_id", rid,
		"file", fileName,
		"lessors", len(result.Lessors),
		"lessees", len(result.Lessees),
		"insights", len(result.Insights),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Ok(result)
}

func (a *Analyzer) fromCache(ctx context.Context, key string) (entity.AnalysisResult, bool) {
	if a.cache == nil {
		return entity.AnalysisResult{}, false
	}
	b, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			a.logger.Warn("llm.analyze.cache_get_failed", "error", err)
		}
		return entity.AnalysisResult{}, false
	}
	var r entity.AnalysisResult
	if err := json.Unmarshal(b, &r); err != nil {
		a.logger.Warn("llm.analyze.cache_decode_failed", "error", err)
		return entity.AnalysisResult{}, false
	}
	return r, true
}

func (a *Analyzer) toCache(ctx context.Context, key string, r entity.AnalysisResult) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, b, a.cfg.CacheTTL); err != nil {
		a.logger.Warn("llm.analyze.cache_set_failed", "error", err)
	}
}

func cacheKey(modelID, prompt string) string {
	sum := sha256.Sum256([]byte(modelID + "\x00" + prompt))
	return "analysis:" + hex.EncodeToString(sum[:])
}

// remediationHint maps common invocation failures to something the user can act on.
func remediationHint(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "the model did not answer in time; retry later or raise LLM_TIMEOUT"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "accessdenied"), strings.Contains(msg, "access denied"),
		strings.Contains(msg, "not authorized"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return "check model access permissions for the configured credentials"
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return "the model is rate limited; retry in a few minutes"
	case strings.Contains(msg, "validationexception"), strings.Contains(msg, "resourcenotfound"), strings.Contains(msg, "model not found"):
		return "check that LLM_MODEL_ID names a model enabled in this region"
	default:
		return "check network connectivity and model availability"
	}
}
