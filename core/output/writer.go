package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fbz-tec/vexport/internal/logger"
)

const (
	None = "none"
	GZIP = "gzip"
	ZIP  = "zip"
	ZSTD = "zstd"
	LZ4  = "lz4"
)

const writeBufferSize = 256 * 1024

// encoder wraps the raw file stream with a compression codec. Closing the
// returned writer finalizes the codec but leaves dst open.
type encoder func(dst io.Writer, path string) (io.WriteCloser, error)

var encoders = map[string]encoder{
	None: func(dst io.Writer, _ string) (io.WriteCloser, error) { return nopCloser{dst}, nil },
	GZIP: newGzipEncoder,
	ZIP:  newZipEncoder,
	ZSTD: newZstdEncoder,
	LZ4:  newLz4Encoder,
}

// Compressions lists the supported compression names, sorted.
func Compressions() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsSupportedCompression reports whether name is a known compression,
// ignoring case and surrounding blanks.
func IsSupportedCompression(name string) bool {
	_, ok := encoders[normalize(name)]
	return ok
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None
	}
	return name
}

// OutputConfig holds configuration for output file creation.
type OutputConfig struct {
	// Path is written as given; no extension is appended.
	Path        string
	Compression string
}

// CreateWriter creates the parent directories of cfg.Path on fsys, then
// creates the file exclusively and wraps it with the configured compression
// and a write buffer. An existing file is never overwritten.
func CreateWriter(fsys FileSystem, cfg OutputConfig) (io.WriteCloser, error) {
	enc, ok := encoders[normalize(cfg.Compression)]
	if !ok {
		return nil, fmt.Errorf("unsupported compression type %q", cfg.Compression)
	}

	if err := fsys.MkdirParents(cfg.Path); err != nil {
		return nil, err
	}
	file, err := fsys.CreateNew(cfg.Path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	codec, err := enc(file, cfg.Path)
	if err != nil {
		file.Close()
		return nil, err
	}

	return newBufferedWriteCloser(&compositeWriteCloser{
		Writer: codec,
		closeFunc: func() error {
			err := codec.Close()
			if ferr := file.Close(); ferr != nil && err == nil {
				err = ferr
			}
			logger.Debug("Output %s closed in %v", cfg.Path, time.Since(start))
			return err
		},
	}, writeBufferSize), nil
}
