// Package fileio provides access to the files which Datasets are read from and written to.
// Files with a .gz, .zst or .lz4 extension are transparently decompressed on Load, and
// compressed on Dump.
package fileio

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileSystem resolves, reads and writes files
type FileSystem interface {
	Resolve(pattern string) ([]string, error) // Resolve expands a file, directory or glob pattern into a sorted list of files
	Exists(path string) (bool, error)         // Exists returns true iff a file or directory exists at path
	Load(path string) ([]byte, error)         // Load reads (and decompresses) the contents of a file
	Dump(path string, data []byte) error      // Dump (compresses and) writes the contents of a file, creating parent directories
}

// Local is a FileSystem backed by an afero.Fs, usually the operating system's
type Local struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewLocal returns a FileSystem for the operating system's files
func NewLocal(logger *slog.Logger) *Local {
	return NewLocalFs(afero.NewOsFs(), logger)
}

// NewLocalFs returns a FileSystem backed by any afero.Fs
func NewLocalFs(fs afero.Fs, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Local{fs: fs, logger: logger}
}

func stripScheme(path string) string {
	return strings.TrimPrefix(path, "file://")
}

// hidden files are skipped when a directory is expanded
func hidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// Resolve expands a file, directory or glob pattern into a sorted list of files.
// Directories are walked recursively, skipping files whose names begin with _ or .
func (l *Local) Resolve(pattern string) ([]string, error) {
	pattern = stripScheme(pattern)
	matches, err := afero.Glob(l.fs, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %s", pattern)
	}
	var files []string
	for _, match := range matches {
		info, err := l.fs.Stat(match)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to stat %s", match)
		}
		if !info.IsDir() {
			files = append(files, match)
			continue
		}
		err = afero.Walk(l.fs, match, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && !hidden(info.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to walk %s", match)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Exists returns true iff a file or directory exists at path
func (l *Local) Exists(path string) (bool, error) {
	ok, err := afero.Exists(l.fs, stripScheme(path))
	if err != nil {
		return false, errors.Wrapf(err, "unable to check %s", path)
	}
	return ok, nil
}

// Load reads (and decompresses) the contents of a file
func (l *Local) Load(path string) ([]byte, error) {
	path = stripScheme(path)
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	if codec := CodecFor(path); codec != nil {
		data, err = codec.Decompress(data)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decompress %s", path)
		}
	}
	return data, nil
}

// Dump (compresses and) writes the contents of a file, creating parent directories
func (l *Local) Dump(path string, data []byte) error {
	path = stripScheme(path)
	if dir := filepath.Dir(path); dir != "" {
		exists, err := afero.DirExists(l.fs, dir)
		if err != nil {
			return errors.Wrapf(err, "unable to check %s", dir)
		}
		if !exists {
			l.logger.Debug("creating directory", "path", dir)
			if err := l.fs.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "unable to create %s", dir)
			}
		}
	}
	if codec := CodecFor(path); codec != nil {
		compressed, err := codec.Compress(data)
		if err != nil {
			return errors.Wrapf(err, "unable to compress %s", path)
		}
		data = compressed
	}
	l.logger.Debug("writing file", "path", path, "bytes", len(data))
	return errors.Wrapf(afero.WriteFile(l.fs, path, data, 0644), "unable to write %s", path)
}
