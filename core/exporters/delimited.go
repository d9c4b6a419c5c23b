package exporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fbz-tec/vexport/core/db"
	"github.com/fbz-tec/vexport/core/formatters"
	"github.com/fbz-tec/vexport/internal/logger"
)

// DelimitedExporter writes one line per row with values joined by the
// delimiter. Values are written verbatim: no quoting or escaping is applied,
// so a value containing the delimiter or a newline is ambiguous to readers.
//
// Each line is handed to w in a single Write; callers supply the buffering.
type DelimitedExporter struct{}

// Delimited returns the delimited text exporter.
func Delimited() Exporter { return DelimitedExporter{} }

func (DelimitedExporter) Export(rows db.Rows, columns []string, w io.Writer, options ExportOptions) (int, error) {
	start := time.Now()

	formatter, err := formatters.NewTextFormatter(options.TimeFormat, options.TimeZone)
	if err != nil {
		return 0, err
	}

	types, err := rows.ColumnTypeNames()
	if err != nil {
		return 0, &ReadError{Op: "error reading column types", Err: err}
	}
	if len(types) != len(columns) {
		types = make([]string, len(columns))
	}

	logger.Debug("Preparing delimited export (delimiter=%q, columns=%d, types=%v)", options.Delimiter, len(columns), types)

	var line []byte
	line = appendLine(line, columns, options.Delimiter)
	if _, err := w.Write(line); err != nil {
		return 0, fmt.Errorf("error writing header: %w", err)
	}
	logger.Debug("Header written: %s", strings.Join(columns, options.Delimiter))

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	record := make([]string, len(columns))

	rowCount := 0
	lastLog := time.Now()
	var fetchTime time.Duration

	for {
		fetchStart := time.Now()
		hasNext := rows.Next()
		fetchTime += time.Since(fetchStart)
		if !hasNext {
			break
		}

		if err := rows.Scan(dest...); err != nil {
			return rowCount, &ReadError{Op: fmt.Sprintf("error reading row %d", rowCount+1), Err: err}
		}
		for i, v := range values {
			record[i] = formatter.FormatColumn(v, types[i])
		}

		line = appendLine(line[:0], record, options.Delimiter)
		if _, err := w.Write(line); err != nil {
			return rowCount, fmt.Errorf("error writing row %d: %w", rowCount+1, err)
		}
		rowCount++

		if options.Progress != nil {
			options.Progress(rowCount)
		}

		if logger.IsVerbose() && (rowCount%10000 == 0 || time.Since(lastLog) > 2*time.Second) {
			elapsed := time.Since(start)
			logger.Debug("%d rows written (%.0f rows/s, elapsed %v, avg fetch=%.2fms/row)",
				rowCount, float64(rowCount)/elapsed.Seconds(), elapsed.Truncate(100*time.Millisecond),
				float64(fetchTime.Milliseconds())/float64(rowCount))
			lastLog = time.Now()
		}
	}

	if err := rows.Err(); err != nil {
		return rowCount, &ReadError{Op: "error iterating rows", Err: err}
	}

	elapsed := time.Since(start)
	logger.Debug("Delimited export completed: %d rows written in %v", rowCount, elapsed.Round(time.Millisecond))
	return rowCount, nil
}

func appendLine(buf []byte, fields []string, delimiter string) []byte {
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, delimiter...)
		}
		buf = append(buf, f...)
	}
	return append(buf, '\n')
}
