package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/pipeline"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// contractView is a contract with its derived scores.
type contractView struct {
	entity.Contract
	Assessment scoring.Assessment `json:"assessment"`
}

func viewOf(c entity.Contract) contractView {
	return contractView{Contract: c, Assessment: scoring.Assess(c.Analysis)}
}

type uploadResponse struct {
	Contracts []contractView      `json:"contracts"`
	Stats     pipeline.BatchStats `json:"stats"`
}

func (s *Server) uploadContracts(c *gin.Context) {
	log := common.LoggerFromContext(c.Request.Context(), s.logger)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a multipart form with one or more \"files\""})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]entity.UploadedFile, 0, len(headers))
	for _, h := range headers {
		f, err := readUpload(h)
		if err != nil {
			log.Warn("http.upload.read_failed", "file", h.Filename, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("could not read %q", h.Filename)})
			return
		}
		files = append(files, f)
	}

	contracts, stats, err := s.processor.ProcessDetailed(c.Request.Context(), files)
	if err != nil {
		var batch *common.BatchValidationError
		if errors.As(err, &batch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": batch.Messages()})
			return
		}
		log.Error("http.upload.process_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Processing failed, please check logs",
			"request_id": GetRequestID(c),
		})
		return
	}

	for _, old := range s.store.Save(contracts...) {
		s.processor.DeleteContract(c.Request.Context(), old)
	}
	resp := uploadResponse{Contracts: make([]contractView, 0, len(contracts)), Stats: stats}
	for _, ct := range contracts {
		resp.Contracts = append(resp.Contracts, viewOf(ct))
	}
	c.JSON(http.StatusOK, resp)
}

func readUpload(h *multipart.FileHeader) (entity.UploadedFile, error) {
	src, err := h.Open()
	if err != nil {
		return entity.UploadedFile{}, err
	}
	defer func() { _ = src.Close() }()

	b, err := io.ReadAll(src)
	if err != nil {
		return entity.UploadedFile{}, err
	}
	return entity.UploadedFile{
		Name:     h.Filename,
		Size:     h.Size,
		MIMEType: h.Header.Get("Content-Type"),
		Content:  b,
	}, nil
}

func (s *Server) listContracts(c *gin.Context) {
	contracts := s.store.List()
	views := make([]contractView, 0, len(contracts))
	for _, ct := range contracts {
		views = append(views, viewOf(ct))
	}
	c.JSON(http.StatusOK, gin.H{
		"contracts": views,
		"stats":     pipeline.Summarize(contracts),
	})
}

func (s *Server) getContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ct, found := s.store.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	c.JSON(http.StatusOK, viewOf(ct))
}

func (s *Server) deleteContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ct, found := s.store.Delete(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	s.processor.DeleteContract(c.Request.Context(), ct)
	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

func (s *Server) exportContracts(c *gin.Context) {
	b, err := s.exporter.ContractsXLSX(s.store.List())
	if err != nil {
		common.LoggerFromContext(c.Request.Context(), s.logger).Error("http.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed, please check logs"})
		return
	}
	name := fmt.Sprintf("contracts-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, b)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	if v := common.UUID("id", c.Param("id")); v != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id " + v.Message})
		return uuid.Nil, false
	}
	return uuid.MustParse(c.Param("id")), true
}
