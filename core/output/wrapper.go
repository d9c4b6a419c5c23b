package output

import (
	"bufio"
	"fmt"
	"io"
)

// bufferedWriteCloser flushes its buffer before closing the wrapped writer.
type bufferedWriteCloser struct {
	*bufio.Writer
	underlying io.WriteCloser
}

func (bwc *bufferedWriteCloser) Close() error {
	if err := bwc.Writer.Flush(); err != nil {
		bwc.underlying.Close()
		return fmt.Errorf("error flushing buffer: %w", err)
	}
	return bwc.underlying.Close()
}

func newBufferedWriteCloser(wc io.WriteCloser, size int) io.WriteCloser {
	return &bufferedWriteCloser{
		Writer:     bufio.NewWriterSize(wc, size),
		underlying: wc,
	}
}

type compositeWriteCloser struct {
	io.Writer
	closeFunc func() error
}

func (c *compositeWriteCloser) Close() error {
	if c.closeFunc == nil {
		return nil
	}
	return c.closeFunc()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
