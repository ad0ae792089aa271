package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

func baseline() entity.AnalysisResult {
	return entity.AnalysisResult{
		Lessors:  []string{"John Smith"},
		Lessees:  []string{"XYZ Oil Company"},
		Acreage:  "160 acres",
		Depths:   "All depths",
		Term:     "5 years",
		Royalty:  "1/8",
		Insights: []string{"Standard Pugh clause"},
	}
}

func TestExtractRoyalty(t *testing.T) {
	cases := map[string]float64{
		"12.5%":            12.5,
		"1/8":              12.5,
		"0.1875":           18.75,
		"3/16 (18.75%)":    18.75,
		"one-eighth (1/8)": 12.5,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, ok := ExtractRoyalty(in)
			require.True(t, ok)
			assert.InDelta(t, want, got, 1e-9)
		})
	}

	for _, in := range []string{constants.SentinelNotFound, constants.SentinelError, "Royalty of 20 percent"} {
		_, ok := ExtractRoyalty(in)
		assert.False(t, ok, in)
	}
}

func TestClassifyRoyalty(t *testing.T) {
	assert.Equal(t, RoyaltyAboveStandard, ClassifyRoyalty("3/16"))
	assert.Equal(t, RoyaltyStandard, ClassifyRoyalty("12.5%"))
	assert.Equal(t, RoyaltyStandard, ClassifyRoyalty("10%"))
	assert.Equal(t, RoyaltyBelowMarket, ClassifyRoyalty("1/16"))
	assert.Equal(t, RoyaltyUnknown, ClassifyRoyalty(constants.SentinelError))
}

func TestAcreageAndTerm(t *testing.T) {
	v, ok := ExtractAcreage("NW/4 of Section 12, 1,280.5 net acres")
	require.True(t, ok)
	assert.InDelta(t, 1280.5, v, 1e-9)

	assert.Equal(t, AcreageSmall, ClassifyAcreage("40 acres"))
	assert.Equal(t, AcreageMedium, ClassifyAcreage("160"))
	assert.Equal(t, AcreageLarge, ClassifyAcreage("640 acres"))
	assert.Equal(t, AcreageUnknown, ClassifyAcreage(constants.SentinelNotFound))

	y, ok := ExtractTermYears("five (5) years from the date hereof")
	require.True(t, ok)
	assert.Equal(t, 5, y)
	assert.True(t, IsStandardTerm("3 years"))
	assert.False(t, IsStandardTerm("10 years"))
	assert.False(t, IsStandardTerm(constants.SentinelNotFound))
}

func TestPartyCount(t *testing.T) {
	r := baseline()
	r.Lessors = []string{"A", "B", "C", constants.SentinelNotFound}
	r.Lessees = []string{"D", "E"}
	assert.Equal(t, 5, PartyCount(r))
	assert.True(t, IsComplexParties(r))
}

func TestRiskScoreBaseline(t *testing.T) {
	assert.Equal(t, 0, RiskScore(baseline()))

	r := baseline()
	r.Royalty = "1/16"
	r.Term = "10 years"
	r.Acreage = "2,000 acres"
	assert.Equal(t, 20+10+10, RiskScore(r))
}

func TestRiskScoreCriticalInsightsCapped(t *testing.T) {
	r := baseline()
	prev := RiskScore(r)
	for i := 1; i <= 8; i++ {
		r.Insights = append(r.Insights, fmt.Sprintf("Potential problem #%d with the pooling clause", i))
		got := RiskScore(r)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, 100)
		if i > 5 {
			assert.Equal(t, prev, got, "insight %d should add nothing", i)
		}
		prev = got
	}
	assert.Equal(t, 25, prev)
}

func TestRiskScoreClamped(t *testing.T) {
	r := baseline()
	r.Royalty = "25%"
	r.Lessors = []string{"A", "B", "C"}
	r.Lessees = []string{"D", "E"}
	r.Term = "1 year"
	r.Acreage = "5000 acres"
	for i := 0; i < 10; i++ {
		r.Insights = append(r.Insights, "unusual risk")
	}
	assert.Equal(t, 10+15+10+25+10, RiskScore(r))
	assert.LessOrEqual(t, RiskScore(r), 100)
}

func TestQualityScoreMonotonic(t *testing.T) {
	r := baseline()
	prev := QualityScore(r)
	assert.Equal(t, 100, prev)

	steps := []func(*entity.AnalysisResult){
		func(r *entity.AnalysisResult) { r.Royalty = constants.SentinelNotFound },
		func(r *entity.AnalysisResult) { r.Term = constants.SentinelNotFound },
		func(r *entity.AnalysisResult) { r.Acreage = constants.SentinelNotFound },
		func(r *entity.AnalysisResult) { r.Depths = constants.SentinelNotFound },
		func(r *entity.AnalysisResult) { r.Lessors = []string{constants.SentinelNotFound} },
		func(r *entity.AnalysisResult) { r.Lessees = []string{constants.SentinelNotFound} },
		func(r *entity.AnalysisResult) { r.Lessors = []string{"John Smith", constants.SentinelError} },
		func(r *entity.AnalysisResult) { r.Lessees = []string{constants.SentinelUnavailable} },
	}
	for _, step := range steps {
		step(&r)
		got := QualityScore(r)
		assert.LessOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0)
		prev = got
	}
	assert.Equal(t, 0, prev)
}

func TestQualityScorePartySentinels(t *testing.T) {
	r := baseline()
	r.Lessors = []string{"John Smith", constants.SentinelError}
	assert.Equal(t, 80, QualityScore(r))

	r = baseline()
	r.Lessees = []string{constants.SentinelNotFound}
	assert.Equal(t, 100, QualityScore(r))
}

func TestQualityScoreInsightBonusClamped(t *testing.T) {
	r := baseline()
	r.Insights = []string{"a", "b", "c", "d", "e", "f"}
	assert.Equal(t, 100, QualityScore(r))
}

func TestAssess(t *testing.T) {
	r := baseline()
	r.Insights = []string{"Unclear shut-in provision"}

	a := Assess(r)
	require.NotNil(t, a.RoyaltyPercent)
	assert.InDelta(t, 12.5, *a.RoyaltyPercent, 1e-9)
	assert.Equal(t, RoyaltyStandard, a.RoyaltyClass)
	assert.Equal(t, AcreageMedium, a.AcreageClass)
	require.NotNil(t, a.TermYears)
	assert.Equal(t, 5, *a.TermYears)
	assert.Equal(t, 2, a.PartyCount)
	assert.Equal(t, []string{"Unclear shut-in provision"}, a.CriticalInsights)
	assert.Equal(t, 5, a.RiskScore)
	assert.Equal(t, 100, a.QualityScore)
	assert.False(t, a.HighRisk)

	failed := Assess(entity.AnalysisResult{
		Lessors: []string{constants.SentinelError}, Lessees: []string{constants.SentinelError},
		Acreage: constants.SentinelError, Depths: constants.SentinelError,
		Term: constants.SentinelError, Royalty: constants.SentinelError,
		Insights: []string{"Analysis failed: boom"},
	})
	assert.Nil(t, failed.RoyaltyPercent)
	assert.Equal(t, 0, failed.QualityScore)
	assert.Empty(t, failed.CriticalInsights)
}
