package output

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fbz-tec/vexport/internal/logger"
)

// newZipEncoder writes a single-entry archive. Closing the entry closes
// the archive.
func newZipEncoder(dst io.Writer, outputPath string) (io.WriteCloser, error) {
	zw := zip.NewWriter(dst)
	entryName := zipEntryName(outputPath)
	logger.Debug("Writing zip archive %s with entry %s", outputPath, entryName)

	entry, err := zw.Create(entryName)
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("error creating zip entry: %w", err)
	}
	return &compositeWriteCloser{Writer: entry, closeFunc: zw.Close}, nil
}

// zipEntryName derives the archived file name from the archive path:
// "out.csv.zip" holds "out.csv", "out.zip" holds "out.csv".
func zipEntryName(outputPath string) string {
	base := path.Base(strings.ReplaceAll(outputPath, "\\", "/"))
	name := base
	if strings.EqualFold(path.Ext(base), ".zip") {
		name = base[:len(base)-len(".zip")]
	}
	switch {
	case name == "" || name == "." || name == "/":
		return "export.csv"
	case path.Ext(name) == "":
		return name + ".csv"
	}
	return name
}
