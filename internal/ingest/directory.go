package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

type DirOptions struct {
	IncludeExts []string // empty = all supported lease document types
	SkipHidden  bool
	Recursive   bool
}

// LoadDirectory walks root and reads every matching file. Unreadable files are
// reported in the returned []FileError and do not stop the walk.
func LoadDirectory(ctx context.Context, root string, opts DirOptions, logger *slog.Logger) ([]entity.UploadedFile, []FileError, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}
	exts := extSet(opts.IncludeExts)
	logger.Debug("ingest.dir.start", "root", root, "exts", sortedKeys(exts), "recursive", opts.Recursive)

	var (
		files  []entity.UploadedFile
		failed []FileError
		stats  DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failed = append(failed, FileError{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || (opts.SkipHidden && isHidden(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if opts.SkipHidden && isHidden(path) {
			return nil
		}
		if !allowed(path, exts) {
			return nil
		}
		stats.Matched++

		f, err := LoadFile(path)
		if err != nil {
			logger.Warn("ingest.file.read_failed", "path", path, "error", err)
			failed = append(failed, FileError{Path: path, Err: err})
			stats.Failed++
			return nil
		}
		files = append(files, f)
		stats.Loaded++
		return nil
	})
	if err != nil {
		return files, failed, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	logger.Info("ingest.dir.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"loaded", stats.Loaded,
		"failed", stats.Failed,
	)
	return files, failed, stats, nil
}
