package llm

import (
	"strings"
)

// BuildPrompt embeds the lease text in a strict JSON-only instruction. Text
// longer than maxChars (when > 0) is truncated.
func BuildPrompt(text, fileName string, maxChars int) string {
	text = strings.TrimSpace(text)
	truncated := false
	if maxChars > 0 && len(text) > maxChars {
		text = strings.ToValidUTF8(text[:maxChars], "")
		truncated = true
	}

	parts := []string{
		"You are an oil and gas lease analyst. Analyze the lease document below.",
		"Return ONLY a JSON object with exactly these fields and no other text:",
		`{"lessors": [string], "lessees": [string], "acreage": string, "depths": string, "term": string, "royalty": string, "insights": [string]}`,
		"- lessors / lessees: every party named as lessor or lessee.",
		"- acreage: the leased acreage as written, e.g. \"160 acres\".",
		"- depths: any depth limitation or \"All depths\".",
		"- term: the primary term, e.g. \"5 years\".",
		"- royalty: the royalty as written, e.g. \"1/8\" or \"18.75%\".",
		"- insights: notable, unusual or risky provisions, one per entry.",
		"Use \"Not found\" for any value that does not appear in the document.",
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	if name := strings.TrimSpace(fileName); name != "" {
		b.WriteString("\n\nFile name: ")
		b.WriteString(name)
	}
	b.WriteString("\n\nLease document:\n")
	b.WriteString(text)
	if truncated {
		b.WriteString("\n…(truncated)")
	}
	return b.String()
}
