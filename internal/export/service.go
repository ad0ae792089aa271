package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

const sheetName = "Contracts"

// Service renders contracts as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var headers = []string{
	"File Name",
	"Uploaded At",
	"Lessors",
	"Lessees",
	"Acreage",
	"Depths",
	"Term",
	"Royalty",
	"Royalty Class",
	"Risk Score",
	"Quality Score",
	"Insights",
	"Extraction Method",
	"Error",
}

// ContractsXLSX returns a workbook with one row per contract.
func (s *Service) ContractsXLSX(contracts []entity.Contract) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Rename the default sheet rather than leaving an empty Sheet1 behind.
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheetName, 1, 1, style)
	}

	for i, c := range contracts {
		row := i + 2
		a := scoring.Assess(c.Analysis)
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		write(1, c.FileName)
		write(2, c.UploadedAt.UTC().Format(time.RFC3339))
		write(3, strings.Join(c.Analysis.Lessors, "; "))
		write(4, strings.Join(c.Analysis.Lessees, "; "))
		write(5, c.Analysis.Acreage)
		write(6, c.Analysis.Depths)
		write(7, c.Analysis.Term)
		write(8, c.Analysis.Royalty)
		write(9, string(a.RoyaltyClass))
		write(10, a.RiskScore)
		write(11, a.QualityScore)
		write(12, truncate(strings.Join(c.Analysis.Insights, "\n"), 2000))
		write(13, c.Method)
		write(14, c.Error)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 32) // file
	_ = f.SetColWidth(sheetName, "B", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "D", 30) // parties
	_ = f.SetColWidth(sheetName, "E", "I", 16)
	_ = f.SetColWidth(sheetName, "J", "K", 12) // scores
	_ = f.SetColWidth(sheetName, "L", "L", 60)
	_ = f.SetColWidth(sheetName, "M", "N", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(contracts),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return strings.ToValidUTF8(s[:n-1], "") + "…"
}
