// Package rules holds the pure validation and prioritisation rules applied to
// uploads and analysis results.
package rules

import (
	"slices"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

const maxNameLength = 255

// Limits bound what a batch may contain.
type Limits struct {
	MaxFileBytes      int64
	AllowedExtensions []string
}

// DefaultLimits are 50 MB and the standard lease document types.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:      50 << 20,
		AllowedExtensions: constants.SupportedExtensions,
	}
}

// LimitsFromConfig adapts the intake section of the application config.
func LimitsFromConfig(cfg common.IntakeConfig) Limits {
	l := DefaultLimits()
	if cfg.MaxFileBytes > 0 {
		l.MaxFileBytes = cfg.MaxFileBytes
	}
	if len(cfg.AllowedExtensions) > 0 {
		l.AllowedExtensions = make([]string, 0, len(cfg.AllowedExtensions))
		for _, e := range cfg.AllowedExtensions {
			l.AllowedExtensions = append(l.AllowedExtensions, constants.NormalizeExt(e))
		}
	}
	return l
}

// ValidateFile returns every rule f breaks; nil when f is acceptable.
func ValidateFile(f entity.UploadedFile, limits Limits) []common.ValidationError {
	v := common.NewValidator()
	v.Field("name", f.Name, common.Required, common.MaxLength(maxNameLength))
	v.Field("size", f.Size, common.SizeBetween(limits.MaxFileBytes))
	if !typeAllowed(f, limits.AllowedExtensions) {
		v.Add("type", f.MIMEType, "is not a supported lease document type")
	}
	if !v.HasErrors() {
		return nil
	}
	return v.Errors()
}

func typeAllowed(f entity.UploadedFile, allowed []string) bool {
	if ext := constants.ExtOf(f.Name); ext != "" && slices.Contains(allowed, ext) {
		return true
	}
	if ext := constants.ExtForMIME(f.MIMEType); ext != "" && slices.Contains(allowed, ext) {
		return true
	}
	return false
}

// ValidateBatch checks all files and aggregates the failures. It returns a
// nil error when every file passes.
func ValidateBatch(files []entity.UploadedFile, limits Limits) error {
	var bad []common.FileValidationError
	for i, f := range files {
		if problems := ValidateFile(f, limits); len(problems) > 0 {
			bad = append(bad, common.FileValidationError{Index: i, FileName: f.Name, Problems: problems})
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return common.NewBatchValidationError(bad)
}

// Priority scores a file for submission order: cheap text first, large scans last.
func Priority(f entity.UploadedFile) int {
	return typeScore(f) - sizePenalty(f.Size)
}

func typeScore(f entity.UploadedFile) int {
	format := constants.MapExtToFormat(constants.ExtOf(f.Name))
	if format == "" {
		format = constants.MapExtToFormat(constants.ExtForMIME(f.MIMEType))
	}
	switch format {
	case constants.TXT:
		return 100
	case constants.DOC:
		return 70
	case constants.PDF:
		return 60
	case constants.IMAGE:
		return 50
	default:
		return 30
	}
}

// sizePenalty is 2 points per MB, at most 50.
func sizePenalty(size int64) int {
	if size <= 0 {
		return 0
	}
	p := int(2 * float64(size) / float64(1<<20))
	return min(p, 50)
}

// HasErrorSentinel reports whether any field carries an error sentinel.
func HasErrorSentinel(r entity.AnalysisResult) bool {
	for _, s := range []string{r.Acreage, r.Depths, r.Term, r.Royalty} {
		if constants.IsSentinel(s) {
			return true
		}
	}
	return slices.ContainsFunc(r.Lessors, constants.IsSentinel) ||
		slices.ContainsFunc(r.Lessees, constants.IsSentinel)
}

// MissingRequiredFields lists the required fields that hold no real value.
// Depths and insights are optional.
func MissingRequiredFields(r entity.AnalysisResult) []string {
	var missing []string
	if allMissing(r.Lessors) {
		missing = append(missing, "lessors")
	}
	if allMissing(r.Lessees) {
		missing = append(missing, "lessees")
	}
	for _, f := range []struct{ name, value string }{
		{"acreage", r.Acreage},
		{"term", r.Term},
		{"royalty", r.Royalty},
	} {
		if f.value == "" || constants.IsMissing(f.value) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func allMissing(items []string) bool {
	for _, it := range items {
		if it != "" && !constants.IsMissing(it) {
			return false
		}
	}
	return true
}

// IsSuccessful is true when the analysis has no error sentinels and no missing required fields.
func IsSuccessful(r entity.AnalysisResult) bool {
	return !HasErrorSentinel(r) && len(MissingRequiredFields(r)) == 0
}
