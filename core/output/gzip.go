package output

import (
	"compress/gzip"
	"io"

	"github.com/fbz-tec/vexport/internal/logger"
)

func newGzipEncoder(dst io.Writer, path string) (io.WriteCloser, error) {
	logger.Debug("Writing gzip-compressed output: %s", path)
	return gzip.NewWriter(dst), nil
}
