// Package server exposes lease intake over HTTP and gRPC health.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/pipeline"
	"github.com/joseph-ayodele/lease-intake/internal/store"
)

// Processor is the orchestration surface the HTTP API needs.
type Processor interface {
	ProcessDetailed(ctx context.Context, files []entity.UploadedFile) ([]entity.Contract, pipeline.BatchStats, error)
	DeleteContract(ctx context.Context, c entity.Contract)
}

// Exporter renders contracts as a spreadsheet.
type Exporter interface {
	ContractsXLSX(contracts []entity.Contract) ([]byte, error)
}

type Server struct {
	processor Processor
	store     *store.ContractStore
	exporter  Exporter
	logger    *slog.Logger
}

func New(p Processor, s *store.ContractStore, exp Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{processor: p, store: s, exporter: exp, logger: logger}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(s.logger))
	r.Use(RequestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"contracts": s.store.Count(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api")
	{
		api.POST("/contracts", s.uploadContracts)
		api.GET("/contracts", s.listContracts)
		api.GET("/contracts/export", s.exportContracts)
		api.GET("/contracts/:id", s.getContract)
		api.DELETE("/contracts/:id", s.deleteContract)
	}
	return r
}
