package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

const noInsights = "No insights provided"

// ErrNoJSON is returned when the model output contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

// ExtractJSONObject strips code fences and surrounding prose, returning the
// text between the first '{' and the last '}'.
func ExtractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// ParseAnalysis turns raw model output into an AnalysisResult. Anything that
// does not match the schema is rejected as a whole.
func ParseAnalysis(raw string, logger *slog.Logger) (entity.AnalysisResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	cleaned, err := sanitizeAnalysisJSON([]byte(obj), logger)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	schema, err := leaseSchema()
	if err != nil {
		return entity.AnalysisResult{}, err
	}
	if err := validateWith(schema, cleaned); err != nil {
		return entity.AnalysisResult{}, err
	}

	var out entity.AnalysisResult
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return entity.AnalysisResult{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return fillEmpty(out), nil
}

// sanitizeAnalysisJSON drops unknown keys, trims strings and coerces numeric
// scalars to strings. Lists are never coerced.
func sanitizeAnalysisJSON(raw []byte, logger *slog.Logger) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	known := map[string]struct{}{}
	for _, k := range listFields {
		known[k] = struct{}{}
	}
	for _, k := range scalarFields {
		known[k] = struct{}{}
	}

	var dropped []string
	for k := range maps.Clone(m) {
		if _, ok := known[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k)
		}
	}

	for _, k := range scalarFields {
		switch v := m[k].(type) {
		case string:
			m[k] = strings.TrimSpace(v)
		case float64:
			m[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	for _, k := range listFields {
		items, ok := m[k].([]any)
		if !ok {
			continue
		}
		for i, it := range items {
			if s, ok := it.(string); ok {
				items[i] = strings.TrimSpace(s)
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		slices.Sort(dropped)
		logger.Warn("llm.analyze.sanitize_dropped", "dropped", dropped)
	}
	return out, nil
}

// fillEmpty guarantees at least one entry per list and never leaves a scalar blank.
func fillEmpty(r entity.AnalysisResult) entity.AnalysisResult {
	r.Lessors = nonEmpty(r.Lessors, constants.SentinelNotFound)
	r.Lessees = nonEmpty(r.Lessees, constants.SentinelNotFound)
	r.Insights = nonEmpty(r.Insights, noInsights)
	for _, p := range []*string{&r.Acreage, &r.Depths, &r.Term, &r.Royalty} {
		if *p == "" {
			*p = constants.SentinelNotFound
		}
	}
	return r
}

func nonEmpty(items []string, fallback string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}
