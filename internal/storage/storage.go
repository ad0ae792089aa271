package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix namespaces every uploaded lease document in the shared bucket.
const KeyPrefix = "contracts/"

var reUnsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectStore is the shared bucket used by the async OCR path.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SanitizeFileName replaces anything outside [A-Za-z0-9._-] with an underscore.
func SanitizeFileName(name string) string {
	s := reUnsafeKeyChars.ReplaceAllString(name, "_")
	if s == "" {
		return "file"
	}
	return s
}

// ObjectKey returns contracts/<epochMillis>-<rand>-<sanitizedName> for an upload
// at t. The random part keeps same-named files uploaded together apart.
func ObjectKey(t time.Time, fileName string) string {
	return fmt.Sprintf("%s%d-%s-%s", KeyPrefix, t.UnixMilli(), randomTag(), SanitizeFileName(fileName))
}

func randomTag() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
