package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// RowProgress renders an indeterminate spinner with the number of exported rows.
type RowProgress struct {
	bar *progressbar.ProgressBar
}

// NewRowProgress creates a row counter writing to out.
func NewRowProgress(out io.Writer) *RowProgress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Exporting rows"),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
	)
	return &RowProgress{bar: bar}
}

// Row records one more exported row; rows is the running total.
func (p *RowProgress) Row(rows int) {
	if p == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Exporting rows... %d rows", rows))
	_ = p.bar.Add(1)
}

// Finish clears the spinner.
func (p *RowProgress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
	_ = p.bar.Clear()
}
