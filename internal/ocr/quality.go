package ocr

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/lease-intake/constants"
)

var (
	reNumber  = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	rePercent = regexp.MustCompile(`\d+(\.\d+)?\s*%|\b\d+/\d+\b`)
)

// ContractKeywords returns the lease keywords present in text, in vocabulary order.
func ContractKeywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range constants.ContractKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// Quality is a 0..1 heuristic of how usable extracted text looks for lease analysis.
// Length contributes up to 0.4, keyword coverage up to 0.4, structure up to 0.2.
func Quality(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	score := 0.4 * min(float64(len(text))/2000.0, 1.0)

	kw := len(ContractKeywords(text))
	score += 0.4 * min(float64(kw)/8.0, 1.0)

	if strings.Count(text, "\n") >= 4 {
		score += 0.1
	}
	if reNumber.MatchString(text) && rePercent.MatchString(text) {
		score += 0.1
	} else if reNumber.MatchString(text) {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights OCR engine confidence over the text heuristic when present.
func blendConfidence(ocrConf, heuristic float64) float64 {
	if ocrConf <= 0 {
		return heuristic
	}
	c := 0.7*ocrConf + 0.3*heuristic
	if c > 1.0 {
		c = 1.0
	}
	return c
}
