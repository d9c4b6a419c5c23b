package exporters

import (
	"io"

	"github.com/fbz-tec/vexport/core/db"
)

// ExportOptions holds export configuration
type ExportOptions struct {
	Delimiter  string
	TimeFormat string
	TimeZone   string
	// Progress, when set, is called after each row with the running count.
	Progress func(rows int)
}

// Exporter serializes a result set to w.
type Exporter interface {
	// Export writes a header line built from columns, then every row of
	// rows in cursor order. It returns the number of data rows written.
	Export(rows db.Rows, columns []string, w io.Writer, options ExportOptions) (int, error)
}

// ReadError reports a failure fetching rows from the database, as opposed
// to a failure writing them.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }
