package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbz-tec/vexport/internal/logger"
)

// FileSystem is the minimal filesystem surface an export needs.
type FileSystem interface {
	// MkdirParents creates the parent directories of name. Existing
	// directories are not an error.
	MkdirParents(name string) error
	// CreateNew creates name for writing and fails with an error matching
	// fs.ErrExist if something already exists at that path.
	CreateNew(name string) (io.WriteCloser, error)
	Close() error
}

// Resolver maps a configured output path to the filesystem holding it and
// the path within that filesystem.
type Resolver func(path string) (FileSystem, string, error)

// Resolve picks the filesystem for path: hdfs://namenode[:port]/dir/file goes
// to HDFS, file:// and plain paths go to the local filesystem.
func Resolve(path string) (FileSystem, string, error) {
	switch {
	case strings.HasPrefix(path, "hdfs://"):
		opts, name, err := parseHDFSPath(path)
		if err != nil {
			return nil, "", err
		}
		fsys, err := NewHDFS(opts)
		if err != nil {
			return nil, "", err
		}
		return fsys, name, nil
	case strings.HasPrefix(path, "file://"):
		return LocalFS{}, strings.TrimPrefix(path, "file://"), nil
	default:
		return LocalFS{}, path, nil
	}
}

// LocalFS writes to the local filesystem.
type LocalFS struct{}

func (LocalFS) MkdirParents(name string) error {
	dir := filepath.Dir(name)
	logger.Debug("Ensuring output directory exists: %s", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}

func (LocalFS) CreateNew(name string) (io.WriteCloser, error) {
	logger.Debug("Creating output file: %s", name)
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	return file, nil
}

func (LocalFS) Close() error { return nil }

func parseHDFSPath(raw string) (HDFSOptions, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return HDFSOptions{}, "", fmt.Errorf("invalid hdfs path %q: %w", raw, err)
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return HDFSOptions{}, "", fmt.Errorf("hdfs path %q has no file name", raw)
	}
	return HDFSOptions{Namenode: u.Host, User: u.User.Username()}, u.Path, nil
}
