package constants

// Sentinel values written into analysis fields in place of real data.
const (
	SentinelError       = "Error in processing"
	SentinelUnavailable = "Service unavailable"
	SentinelNotFound    = "Not found"
)

// ErrorTextPrefix prefixes the extracted-text field of a contract whose file failed.
const ErrorTextPrefix = "Error processing file: "

// ContractKeywords are lease vocabulary terms used by the text quality heuristic.
var ContractKeywords = []string{
	"lease", "lessor", "lessee", "royalty", "acres", "oil", "gas", "mineral",
	"term", "primary term", "bonus", "shut-in", "pooling", "depth", "premises", "assignment",
}

// CriticalInsightKeywords flag an analysis insight as critical (case-insensitive substring).
var CriticalInsightKeywords = []string{
	"unusual", "problematic", "risk", "concern", "warning", "issue",
	"potential problem", "non-standard", "deviation", "conflict", "ambiguous", "unclear",
}

// IsSentinel reports whether v is one of the error sentinels.
func IsSentinel(v string) bool {
	return v == SentinelError || v == SentinelUnavailable
}

// IsMissing reports whether v is an error sentinel or the not-found marker.
func IsMissing(v string) bool {
	return IsSentinel(v) || v == SentinelNotFound
}
