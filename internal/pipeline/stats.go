package pipeline

import (
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/rules"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

// BatchStats summarises a processed batch.
type BatchStats struct {
	Total          int     `json:"total"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	AverageQuality float64 `json:"averageQuality"`
	HighRisk       int     `json:"highRisk"`
}

// Summarize computes BatchStats. A contract succeeds when its analysis has no
// error sentinels and no missing required fields.
func Summarize(contracts []entity.Contract) BatchStats {
	s := BatchStats{Total: len(contracts)}
	if s.Total == 0 {
		return s
	}
	quality := 0
	for _, c := range contracts {
		if rules.IsSuccessful(c.Analysis) {
			s.Succeeded++
		} else {
			s.Failed++
		}
		quality += scoring.QualityScore(c.Analysis)
		if scoring.RiskScore(c.Analysis) > scoring.HighRiskThreshold {
			s.HighRisk++
		}
	}
	s.AverageQuality = float64(quality) / float64(s.Total)
	return s
}
