package export

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbz-tec/vexport/core/config"
	"github.com/fbz-tec/vexport/core/db"
	"github.com/fbz-tec/vexport/core/db/dbtest"
	"github.com/fbz-tec/vexport/core/exporters"
	"github.com/fbz-tec/vexport/core/output"
	"github.com/fbz-tec/vexport/core/validation"
	"github.com/fbz-tec/vexport/internal/logger"
)

const sampleOutput = "col1,col2\nv1,v2\nv3,null\nv5,v6\n"

func testConfig(t *testing.T) config.ExportConfig {
	return config.ExportConfig{
		ConnectionString: "jdbc:vertica://localhost:5433/test",
		User:             "dbadmin",
		Password:         "testpassword",
		SelectStatement:  dbtest.SamplesQuery,
		Delimiter:        ",",
		Path:             filepath.Join(t.TempDir(), "vertica_test.csv"),
	}
}

func newTestRunner(factory db.Factory) *Runner {
	return &Runner{
		Stores:      factory,
		Filesystems: output.Resolve,
		Exporter:    exporters.Delimited(),
		Log:         logger.New(io.Discard, io.Discard).Named(StageName),
	}
}

func sampleRunner(t *testing.T, opened *int) *Runner {
	return newTestRunner(dbtest.Factory(dbtest.NewDatabase(t, dbtest.Samples...), opened))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	return string(content)
}

func TestRun_WritesHeaderAndRows(t *testing.T) {
	cfg := testConfig(t)
	runner := sampleRunner(t, nil)

	res, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, cfg.Path); got != sampleOutput {
		t.Errorf("File content = %q, want %q", got, sampleOutput)
	}
	if res.Rows != 3 || res.Path != cfg.Path || strings.Join(res.Columns, ",") != "col1,col2" {
		t.Errorf("Result = %+v", res)
	}
	if runner.Phase() != PhaseDone {
		t.Errorf("Phase() = %s, want done", runner.Phase())
	}
}

func TestRun_DefaultDelimiter(t *testing.T) {
	cfg := testConfig(t).With(config.WithDelimiter(""))

	if _, err := sampleRunner(t, nil).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := readFile(t, cfg.Path); got != sampleOutput {
		t.Errorf("File content = %q, want %q", got, sampleOutput)
	}
}

func TestRun_CustomDelimiter(t *testing.T) {
	cfg := testConfig(t).With(config.WithDelimiter("|"))

	if _, err := sampleRunner(t, nil).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "col1|col2\nv1|v2\nv3|null\nv5|v6\n"; readFile(t, cfg.Path) != want {
		t.Errorf("File content = %q, want %q", readFile(t, cfg.Path), want)
	}
}

func TestRun_CreatesParentDirectories(t *testing.T) {
	cfg := testConfig(t)
	cfg.Path = filepath.Join(filepath.Dir(cfg.Path), "nested", "deeper", "out.csv")

	if _, err := sampleRunner(t, nil).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := readFile(t, cfg.Path); got != sampleOutput {
		t.Errorf("File content = %q", got)
	}
}

func TestRun_ExistingFileNotOverwritten(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Path, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := sampleRunner(t, nil)
	_, err := runner.Run(context.Background(), cfg)
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Run() error = %v, want filesystem error", err)
	}
	if got := readFile(t, cfg.Path); got != "keep me" {
		t.Errorf("existing file modified: %q", got)
	}
	if runner.Phase() != PhaseFailed {
		t.Errorf("Phase() = %s, want failed", runner.Phase())
	}
}

func TestRun_SecondRunFails(t *testing.T) {
	cfg := testConfig(t)
	runner := sampleRunner(t, nil)

	if _, err := runner.Run(context.Background(), cfg); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := runner.Run(context.Background(), cfg); !errors.Is(err, ErrFilesystem) {
		t.Fatalf("second Run() error = %v, want filesystem error", err)
	}
	if got := readFile(t, cfg.Path); got != sampleOutput {
		t.Errorf("first output changed: %q", got)
	}
}

func TestRun_FailsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(config.ExportConfig) config.ExportConfig
		wantKind *Error
	}{
		{"empty select", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithSelectStatement(""))
		}, ErrQuery},
		{"dml statement", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithSelectStatement("DELETE FROM samples"))
		}, ErrQuery},
		{"vertica export statement", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithSelectStatement("EXPORT TO PARQUET(directory='/x') AS SELECT 1"))
		}, ErrQuery},
		{"missing path", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithPath(""))
		}, ErrConfiguration},
		{"bad connection string", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithConnectionString("jdbc:postgresql://localhost/db"))
		}, ErrConfiguration},
		{"unresolved macro", func(c config.ExportConfig) config.ExportConfig {
			return c.With(config.WithUser("${user}"), config.WithPassword("${password}"))
		}, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened := 0
			cfg := tt.cfg(testConfig(t))
			runner := sampleRunner(t, &opened)

			_, err := runner.Run(context.Background(), cfg)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Run() error = %v, want %s", err, tt.wantKind.Kind)
			}
			if opened != 0 {
				t.Errorf("store opened %d times, want 0", opened)
			}
			if cfg.Path != "" {
				if _, err := os.Stat(cfg.Path); !os.IsNotExist(err) {
					t.Error("no file must be created")
				}
			}
		})
	}
}

func TestRun_ValidationErrorIsExposed(t *testing.T) {
	cfg := testConfig(t).With(config.WithPath(""), config.WithConnectionString(""))

	_, err := sampleRunner(t, nil).Run(context.Background(), cfg)
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Run() error = %v, want *validation.ValidationError", err)
	}
	if len(verr.Failures) != 2 {
		t.Errorf("failures = %+v", verr.Failures)
	}
}

func TestRun_QueryErrorCreatesNoFile(t *testing.T) {
	cfg := testConfig(t).With(config.WithSelectStatement("SELECT * FROM missing_table"))

	_, err := sampleRunner(t, nil).Run(context.Background(), cfg)
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("Run() error = %v, want query error", err)
	}
	if _, err := os.Stat(cfg.Path); !os.IsNotExist(err) {
		t.Error("no file must be created when the query fails")
	}
}

// fakeStore lets tests inject connect and close failures.
type fakeStore struct {
	db.Store
	connectErr error
	closeErr   error
	closed     bool
}

func (s *fakeStore) Connect(ctx context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	return s.Store.Connect(ctx)
}

func (s *fakeStore) Close() error {
	s.closed = true
	s.Store.Close()
	return s.closeErr
}

func fakeFactory(t *testing.T, store *fakeStore) db.Factory {
	store.Store = db.NewSQLStore(dbtest.Driver, dbtest.NewDatabase(t, dbtest.Samples...))
	return db.FactoryFunc(func(db.ConnParams) (db.Store, error) { return store, nil })
}

func TestRun_ConnectionError(t *testing.T) {
	store := &fakeStore{connectErr: errors.New("connection refused")}
	cfg := testConfig(t)

	_, err := newTestRunner(fakeFactory(t, store)).Run(context.Background(), cfg)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Run() error = %v, want connection error", err)
	}
	if !store.closed {
		t.Error("store must be closed after a failed connect")
	}
	if _, err := os.Stat(cfg.Path); !os.IsNotExist(err) {
		t.Error("no file must be created when connecting fails")
	}
}

func TestRun_FactoryError(t *testing.T) {
	factory := db.FactoryFunc(func(db.ConnParams) (db.Store, error) { return nil, errors.New("bad dsn") })

	_, err := newTestRunner(factory).Run(context.Background(), testConfig(t))
	if KindOf(err) != KindConnection {
		t.Errorf("KindOf(%v) = %s, want connection", err, KindOf(err))
	}
}

func TestRun_CleanupErrorAfterSuccess(t *testing.T) {
	store := &fakeStore{closeErr: errors.New("pool stuck")}
	cfg := testConfig(t)

	_, err := newTestRunner(fakeFactory(t, store)).Run(context.Background(), cfg)
	if !errors.Is(err, ErrDriverCleanup) {
		t.Fatalf("Run() error = %v, want driver cleanup error", err)
	}
	if got := readFile(t, cfg.Path); got != sampleOutput {
		t.Errorf("File content = %q", got)
	}
}

func TestRun_CleanupErrorDoesNotMaskFailure(t *testing.T) {
	store := &fakeStore{closeErr: errors.New("pool stuck")}
	cfg := testConfig(t).With(config.WithSelectStatement("SELECT * FROM missing_table"))

	_, err := newTestRunner(fakeFactory(t, store)).Run(context.Background(), cfg)
	if !errors.Is(err, ErrQuery) || errors.Is(err, ErrDriverCleanup) {
		t.Fatalf("Run() error = %v, want query error only", err)
	}
}

func TestRun_Progress(t *testing.T) {
	var calls []int
	runner := sampleRunner(t, nil)
	runner.Progress = func(n int) { calls = append(calls, n) }

	if _, err := runner.Run(context.Background(), testConfig(t)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestRun_CompressedOutput(t *testing.T) {
	cfg := testConfig(t).With(config.WithCompression("gzip"))
	cfg.Path += ".gz"

	if _, err := sampleRunner(t, nil).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader([]byte(readFile(t, cfg.Path))))
	if err != nil {
		t.Fatal(err)
	}
	content, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != sampleOutput {
		t.Errorf("Decompressed content = %q", content)
	}
}

type failingExporter struct{ err error }

func (e failingExporter) Export(db.Rows, []string, io.Writer, exporters.ExportOptions) (int, error) {
	return 1, e.err
}

func TestRun_ExportErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *Error
	}{
		{"read error", &exporters.ReadError{Op: "error iterating rows", Err: errors.New("lost")}, ErrQuery},
		{"write error", errors.New("disk full"), ErrFilesystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			runner := sampleRunner(t, nil)
			runner.Exporter = failingExporter{err: tt.err}

			_, err := runner.Run(context.Background(), cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Run() error = %v, want %s", err, tt.want.Kind)
			}
			if _, err := os.Stat(cfg.Path); err != nil {
				t.Error("partial file is left in place")
			}
		})
	}
}

func TestError(t *testing.T) {
	err := newError(KindFilesystem, "create", errors.New("exists"))
	if err.Error() != "filesystem error: create: exists" {
		t.Errorf("Error() = %q", err.Error())
	}
	if errors.Is(err, ErrQuery) || !errors.Is(err, ErrFilesystem) {
		t.Error("Is must match on kind only")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("KindOf(plain) should be unknown")
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseQueryExecuting.String() != "query executing" || Phase(42).String() != "unknown" {
		t.Error("unexpected phase names")
	}
	if !PhaseDone.Terminal() || !PhaseFailed.Terminal() || PhaseWriting.Terminal() {
		t.Error("unexpected terminal phases")
	}
}
