// Package export runs a single Vertica select statement and streams its
// result set to a newly created delimited text file.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fbz-tec/vexport/core/config"
	"github.com/fbz-tec/vexport/core/db"
	"github.com/fbz-tec/vexport/core/exporters"
	"github.com/fbz-tec/vexport/core/output"
	"github.com/fbz-tec/vexport/core/validation"
	"github.com/fbz-tec/vexport/internal/logger"
	"go.uber.org/multierr"
)

// StageName prefixes every log line written by the runner.
const StageName = "vertica-export"

// Result summarizes a successful export.
type Result struct {
	Rows    int
	Path    string
	Columns []string
	Elapsed time.Duration
}

// Runner executes exports. The zero value is not usable; use NewRunner or
// fill every field.
type Runner struct {
	Stores      db.Factory
	Filesystems output.Resolver
	Exporter    exporters.Exporter
	// Progress, when set, is called after each written row.
	Progress func(rows int)
	Log      logger.Logger

	phase atomic.Int32
}

// NewRunner returns a runner wired to Vertica, the local or HDFS filesystem
// and the delimited text exporter.
func NewRunner() *Runner {
	return &Runner{
		Stores:      db.VerticaFactory,
		Filesystems: output.Resolve,
		Exporter:    exporters.Delimited(),
		Log:         logger.Named(StageName),
	}
}

// Phase returns the current phase. Safe to call from another goroutine.
func (r *Runner) Phase() Phase {
	return Phase(r.phase.Load())
}

func (r *Runner) enter(p Phase) {
	r.phase.Store(int32(p))
	r.Log.Debug("phase: %s", p)
}

// Run performs one export of cfg. cfg must not contain unresolved macros.
// The connection and the output file are released on every exit path; a
// file that was already created is left in place if a later step fails.
func (r *Runner) Run(ctx context.Context, cfg config.ExportConfig) (res Result, err error) {
	start := time.Now()
	r.enter(PhaseNotStarted)
	defer func() {
		if err != nil {
			r.enter(PhaseFailed)
			return
		}
		r.enter(PhaseDone)
	}()

	r.enter(PhaseValidating)
	if err := r.validate(cfg); err != nil {
		return res, err
	}

	r.enter(PhaseConnecting)
	r.Log.Info("Connecting to %s", cfg.ConnectionString)
	store, err := r.Stores.NewStore(db.ConnParams{
		ConnectionString: cfg.ConnectionString,
		User:             cfg.User,
		Password:         cfg.Password,
	})
	if err != nil {
		return res, newError(KindConnection, "open", err)
	}
	defer func() {
		r.enter(PhaseClosing)
		if cerr := store.Close(); cerr != nil {
			if err != nil {
				r.Log.Warn("Failed to close database connection: %v", cerr)
				return
			}
			err = newError(KindDriverCleanup, "close", cerr)
		}
	}()
	if err := store.Connect(ctx); err != nil {
		return res, newError(KindConnection, "connect", err)
	}

	r.enter(PhaseQueryExecuting)
	rows, err := store.Query(ctx, cfg.SelectStatement)
	if err != nil {
		return res, newError(KindQuery, "execute", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return res, newError(KindQuery, "columns", err)
	}
	r.Log.Debug("Result set has %d columns", len(columns))

	r.enter(PhaseWriting)
	n, err := r.write(rows, columns, cfg)
	if err != nil {
		return res, err
	}

	res = Result{Rows: n, Path: cfg.Path, Columns: columns, Elapsed: time.Since(start)}
	r.Log.Success("Exported %d rows to %s in %v", n, cfg.Path, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (r *Runner) validate(cfg config.ExportConfig) error {
	collector := validation.NewFailureCollector(StageName)
	cfg.Validate(collector)
	if err := collector.GetOrThrow(); err != nil {
		return newError(KindConfiguration, "validate", err)
	}
	for _, p := range config.Properties() {
		if cfg.ContainsMacro(p) {
			return newError(KindConfiguration, "validate", fmt.Errorf("property %q contains an unresolved macro", p))
		}
	}
	if err := validation.ValidateQuery(cfg.SelectStatement); err != nil {
		return newError(KindQuery, "validate", err)
	}
	return nil
}

func (r *Runner) write(rows db.Rows, columns []string, cfg config.ExportConfig) (n int, err error) {
	fsys, name, err := r.Filesystems(cfg.Path)
	if err != nil {
		return 0, newError(KindFilesystem, "resolve", err)
	}
	defer func() {
		if cerr := fsys.Close(); cerr != nil {
			r.Log.Warn("Failed to close filesystem client: %v", cerr)
		}
	}()

	w, err := output.CreateWriter(fsys, output.OutputConfig{Path: name, Compression: cfg.GetCompression()})
	if err != nil {
		return 0, newError(KindFilesystem, "create", err)
	}

	n, err = r.Exporter.Export(rows, columns, w, exporters.ExportOptions{
		Delimiter:  cfg.GetDelimiter(),
		TimeFormat: cfg.TimeFormat,
		TimeZone:   cfg.TimeZone,
		Progress:   r.Progress,
	})
	kind := KindFilesystem
	var rerr *exporters.ReadError
	if errors.As(err, &rerr) {
		kind = KindQuery
	}
	err = multierr.Append(err, w.Close())
	if err != nil {
		r.Log.Warn("Partial output may remain at %s", cfg.Path)
		return n, newError(kind, "write", err)
	}
	return n, nil
}
