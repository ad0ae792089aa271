// Package scoring derives risk and completeness scores from a lease analysis.
package scoring

import (
	"slices"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

// HighRiskThreshold separates high-risk leases in batch statistics.
const HighRiskThreshold = 70

// RiskScore adds up unfavourable signals, 0..100.
func RiskScore(r entity.AnalysisResult) int {
	score := 0
	if pct, ok := ExtractRoyalty(r.Royalty); ok {
		if pct < 10 {
			score += 20
		}
		if pct > 20 {
			score += 10
		}
	}
	if IsComplexParties(r) {
		score += 15
	}
	if !IsStandardTerm(r.Term) {
		score += 10
	}
	score += min(5*len(CriticalInsights(r.Insights)), 25)
	if acres, ok := ExtractAcreage(r.Acreage); ok && acres > 1000 {
		score += 10
	}
	return clamp(score)
}

// QualityScore measures how complete an analysis is, 0..100. Party lists lose
// points only for error sentinels; a "Not found" party is not penalised.
func QualityScore(r entity.AnalysisResult) int {
	score := 100
	if slices.ContainsFunc(r.Lessors, constants.IsSentinel) {
		score -= 20
	}
	if slices.ContainsFunc(r.Lessees, constants.IsSentinel) {
		score -= 20
	}
	if constants.IsMissing(r.Acreage) {
		score -= 15
	}
	if constants.IsMissing(r.Depths) {
		score -= 10
	}
	if constants.IsMissing(r.Term) {
		score -= 15
	}
	if constants.IsMissing(r.Royalty) {
		score -= 20
	}
	if len(r.Insights) > 5 {
		score += 10
	}
	return clamp(score)
}

func clamp(v int) int {
	return max(0, min(v, 100))
}

// Assessment bundles every rule for one analysis.
type Assessment struct {
	RoyaltyPercent   *float64     `json:"royaltyPercent,omitempty"`
	RoyaltyClass     RoyaltyClass `json:"royaltyClass"`
	Acres            *float64     `json:"acres,omitempty"`
	AcreageClass     AcreageClass `json:"acreageClass"`
	TermYears        *int         `json:"termYears,omitempty"`
	StandardTerm     bool         `json:"standardTerm"`
	PartyCount       int          `json:"partyCount"`
	ComplexParties   bool         `json:"complexParties"`
	CriticalInsights []string     `json:"criticalInsights"`
	RiskScore        int          `json:"riskScore"`
	QualityScore     int          `json:"qualityScore"`
	HighRisk         bool         `json:"highRisk"`
}

func Assess(r entity.AnalysisResult) Assessment {
	a := Assessment{
		RoyaltyClass:     ClassifyRoyalty(r.Royalty),
		AcreageClass:     ClassifyAcreage(r.Acreage),
		StandardTerm:     IsStandardTerm(r.Term),
		PartyCount:       PartyCount(r),
		ComplexParties:   IsComplexParties(r),
		CriticalInsights: CriticalInsights(r.Insights),
		RiskScore:        RiskScore(r),
		QualityScore:     QualityScore(r),
	}
	if a.CriticalInsights == nil {
		a.CriticalInsights = []string{}
	}
	if pct, ok := ExtractRoyalty(r.Royalty); ok {
		a.RoyaltyPercent = &pct
	}
	if acres, ok := ExtractAcreage(r.Acreage); ok {
		a.Acres = &acres
	}
	if y, ok := ExtractTermYears(r.Term); ok {
		a.TermYears = &y
	}
	a.HighRisk = a.RiskScore > HighRiskThreshold
	return a
}
