// Package app wires configuration into the services shared by the daemon and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/lease-intake/internal/awsclient"
	"github.com/joseph-ayodele/lease-intake/internal/cache"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/export"
	"github.com/joseph-ayodele/lease-intake/internal/llm"
	"github.com/joseph-ayodele/lease-intake/internal/llm/anthropic"
	"github.com/joseph-ayodele/lease-intake/internal/llm/bedrock"
	"github.com/joseph-ayodele/lease-intake/internal/llm/openai"
	"github.com/joseph-ayodele/lease-intake/internal/ocr"
	"github.com/joseph-ayodele/lease-intake/internal/pipeline"
	"github.com/joseph-ayodele/lease-intake/internal/rules"
	"github.com/joseph-ayodele/lease-intake/internal/storage"
)

// App holds the constructed services. Clients are built once here and injected.
type App struct {
	Config    *common.Config
	Extractor *ocr.Extractor
	Analyzer  *llm.Analyzer
	Processor *pipeline.Processor
	Exporter  *export.Service
	Store     storage.ObjectStore

	cache  cache.Client
	logger *slog.Logger
}

// Build resolves AWS credentials, the model provider and the optional cache.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clients, err := awsclient.New(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	logger.Info("aws.clients.ready", "region", cfg.AWS.Region, "bucket", cfg.AWS.Bucket)

	gen, err := NewGenerator(cfg.LLM, clients, logger)
	if err != nil {
		return nil, err
	}

	var c cache.Client
	if cfg.Cache.Addr != "" {
		rc, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			// the cache is optional; run without it
			logger.Warn("cache.redis.unavailable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			c = rc
			logger.Info("cache.redis.ready", "addr", cfg.Cache.Addr)
		}
	}

	objStore := storage.NewS3Store(clients.S3, cfg.AWS.Bucket, logger)
	extractor := ocr.NewExtractor(ocr.Config{
		PollInterval:     cfg.OCR.PollInterval,
		MaxAttempts:      cfg.OCR.MaxAttempts,
		JobTimeout:       cfg.OCR.JobTimeout,
		FallbackMaxBytes: cfg.OCR.FallbackMaxBytes,
	}, ocr.NewTextractService(clients.Textract, logger), objStore, logger)

	analyzer := llm.NewAnalyzer(llm.Config{
		ModelID:        cfg.LLM.ModelID,
		MaxTokens:      cfg.LLM.MaxTokens,
		MaxPromptChars: cfg.LLM.MaxPromptChars,
		Timeout:        cfg.LLM.Timeout,
		CacheTTL:       cfg.Cache.TTL,
	}, gen, c, logger)

	return &App{
		Config:    cfg,
		Extractor: extractor,
		Analyzer:  analyzer,
		Processor: pipeline.NewProcessor(extractor, analyzer, objStore, rules.LimitsFromConfig(cfg.Intake), logger),
		Exporter:  export.NewService(logger),
		Store:     objStore,
		cache:     c,
		logger:    logger,
	}, nil
}

// NewGenerator picks the model client for cfg.Provider.
func NewGenerator(cfg common.LLMConfig, clients *awsclient.Clients, logger *slog.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case common.LLMProviderBedrock, "":
		if clients == nil || clients.Bedrock == nil {
			return nil, errors.New("bedrock provider needs AWS clients")
		}
		return bedrock.NewClient(clients.Bedrock, bedrock.Config{
			ModelID:     cfg.ModelID,
			Temperature: cfg.Temperature,
		}, logger), nil
	case common.LLMProviderAnthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.ModelID,
			Temperature: float64(cfg.Temperature),
			MaxRetries:  2,
		}, logger), nil
	case common.LLMProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.ModelID,
			Temperature: cfg.Temperature,
			JSONMode:    true,
		}, logger), nil
	default:
		return nil, common.ConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", cfg.Provider))
	}
}

// Close waits for pending storage cleanups and releases the cache connection.
func (a *App) Close(ctx context.Context) error {
	err := a.Processor.Close(ctx)
	if a.cache != nil {
		err = errors.Join(err, a.cache.Close())
	}
	return err
}
