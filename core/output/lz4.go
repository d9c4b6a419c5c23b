package output

import (
	"io"

	"github.com/fbz-tec/vexport/internal/logger"
	"github.com/pierrec/lz4/v4"
)

func newLz4Encoder(dst io.Writer, path string) (io.WriteCloser, error) {
	logger.Debug("Writing lz4-compressed output: %s", path)
	return lz4.NewWriter(dst), nil
}
