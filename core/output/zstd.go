package output

import (
	"fmt"
	"io"

	"github.com/fbz-tec/vexport/internal/logger"
	"github.com/klauspost/compress/zstd"
)

func newZstdEncoder(dst io.Writer, path string) (io.WriteCloser, error) {
	logger.Debug("Writing zstd-compressed output: %s", path)
	w, err := zstd.NewWriter(dst)
	if err != nil {
		return nil, fmt.Errorf("error creating zstd writer: %w", err)
	}
	return w, nil
}
