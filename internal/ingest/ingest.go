// Package ingest loads lease documents from the local filesystem.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

// DirStats summarizes a directory load.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Loaded  uint32
	Failed  uint32
}

// FileError records a matched file that could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// LoadFile reads path into an UploadedFile, taking the MIME type from the extension.
func LoadFile(path string) (entity.UploadedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return entity.UploadedFile{}, err
	}
	name := filepath.Base(path)
	return entity.UploadedFile{
		Name:     name,
		Size:     int64(len(b)),
		MIMEType: constants.MIMEForName(name),
		Content:  b,
	}, nil
}

// extSet normalizes exts; nil or empty means every supported extension.
func extSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = constants.SupportedExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			set[e] = struct{}{}
		}
	}
	if _, ok := set["tiff"]; ok {
		set["tif"] = struct{}{}
	}
	return set
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.ExtOf(path)]
	return ok
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// sortedKeys is used for deterministic log output.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
