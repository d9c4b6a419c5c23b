package exporters

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fbz-tec/vexport/core/db"
	"github.com/fbz-tec/vexport/core/db/dbtest"
)

func queryFixture(t *testing.T, query string, statements ...string) (db.Rows, []string) {
	t.Helper()

	store := db.NewSQLStore(dbtest.Driver, dbtest.NewDatabase(t, statements...))
	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rows, err := store.Query(ctx, query)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	t.Cleanup(func() { rows.Close() })

	columns, err := rows.Columns()
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	return rows, columns
}

func TestDelimitedExport(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		want      string
	}{
		{"comma", ",", "col1,col2\nv1,v2\nv3,null\nv5,v6\n"},
		{"pipe", "|", "col1|col2\nv1|v2\nv3|null\nv5|v6\n"},
		{"multi character", "::", "col1::col2\nv1::v2\nv3::null\nv5::v6\n"},
		{"tab", "\t", "col1\tcol2\nv1\tv2\nv3\tnull\nv5\tv6\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, columns := queryFixture(t, dbtest.SamplesQuery, dbtest.Samples...)

			var buf bytes.Buffer
			n, err := Delimited().Export(rows, columns, &buf, ExportOptions{Delimiter: tt.delimiter})
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if n != 3 {
				t.Errorf("Export() rows = %d, want 3", n)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestDelimitedExport_EmptyResult(t *testing.T) {
	rows, columns := queryFixture(t, "SELECT col1, col2 FROM samples WHERE 1 = 0", dbtest.Samples...)

	var buf bytes.Buffer
	n, err := Delimited().Export(rows, columns, &buf, ExportOptions{Delimiter: ","})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 0 || buf.String() != "col1,col2\n" {
		t.Errorf("Export() = %d, %q; want header only", n, buf.String())
	}
}

func TestDelimitedExport_NoQuoting(t *testing.T) {
	rows, columns := queryFixture(t, "SELECT 'a,b' AS x, 'say \"hi\"' AS y")

	var buf bytes.Buffer
	if _, err := Delimited().Export(rows, columns, &buf, ExportOptions{Delimiter: ","}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := "x,y\na,b,say \"hi\"\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDelimitedExport_NumericValues(t *testing.T) {
	rows, columns := queryFixture(t, "SELECT 42 AS i, 1.5 AS f, NULL AS n")

	var buf bytes.Buffer
	if _, err := Delimited().Export(rows, columns, &buf, ExportOptions{Delimiter: ";"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := "i;f;n\n42;1.5;null\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDelimitedExport_Progress(t *testing.T) {
	rows, columns := queryFixture(t, dbtest.SamplesQuery, dbtest.Samples...)

	var seen []int
	_, err := Delimited().Export(rows, columns, &bytes.Buffer{}, ExportOptions{
		Delimiter: ",",
		Progress:  func(n int) { seen = append(seen, n) },
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("progress calls = %v", seen)
	}
}

// fakeRows replays fixed values and can fail on Scan or at the end.
type fakeRows struct {
	types   []string
	values  [][]any
	pos     int
	scanErr error
	iterErr error
}

func (r *fakeRows) Columns() ([]string, error)         { return nil, nil }
func (r *fakeRows) ColumnTypeNames() ([]string, error) { return r.types, nil }
func (r *fakeRows) Next() bool                 { r.pos++; return r.pos <= len(r.values) }
func (r *fakeRows) Err() error                 { return r.iterErr }
func (r *fakeRows) Close() error               { return nil }

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	for i, v := range r.values[r.pos-1] {
		*dest[i].(*any) = v
	}
	return nil
}

func TestDelimitedExport_TimeFormatting(t *testing.T) {
	ts := time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC)
	rows := &fakeRows{values: [][]any{{ts, int64(7)}}}

	var buf bytes.Buffer
	_, err := Delimited().Export(rows, []string{"ts", "n"}, &buf, ExportOptions{
		Delimiter:  ",",
		TimeFormat: "yyyy-MM-dd HH:mm:ss",
		TimeZone:   "UTC",
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := "ts,n\n2024-03-15 13:45:30,7\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDelimitedExport_InvalidTimeZone(t *testing.T) {
	_, err := Delimited().Export(&fakeRows{}, []string{"a"}, &bytes.Buffer{}, ExportOptions{TimeZone: "Nowhere/City"})
	if err == nil {
		t.Error("expected error for unknown time zone")
	}
}

func TestDelimitedExport_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		rows     *fakeRows
		wantRows int
		wantMsg  string
	}{
		{"scan error", &fakeRows{values: [][]any{{"a"}}, scanErr: boom}, 0, "error reading row 1"},
		{"iteration error", &fakeRows{values: [][]any{{"a"}, {"b"}}, iterErr: boom}, 2, "error iterating rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Delimited().Export(tt.rows, []string{"c"}, &bytes.Buffer{}, ExportOptions{Delimiter: ","})
			var rerr *ReadError
			if !errors.Is(err, boom) || !errors.As(err, &rerr) || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Export() error = %v, want %q wrapping boom", err, tt.wantMsg)
			}
			if n != tt.wantRows {
				t.Errorf("Export() rows = %d, want %d", n, tt.wantRows)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDelimitedExport_WriteError(t *testing.T) {
	_, err := Delimited().Export(&fakeRows{}, []string{"a"}, failingWriter{}, ExportOptions{Delimiter: ","})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Export() error = %v, want disk full", err)
	}
}

func TestDelimitedExport_DefaultLayoutPerColumnType(t *testing.T) {
	rows := &fakeRows{
		types: []string{"DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ"},
		values: [][]any{{
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(0, 1, 1, 13, 45, 30, 0, time.UTC),
			time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC),
			time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC),
		}},
	}

	var buf bytes.Buffer
	_, err := Delimited().Export(rows, []string{"d", "t", "ts", "tstz"}, &buf, ExportOptions{Delimiter: ","})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := "d,t,ts,tstz\n2024-03-15,13:45:30,2024-03-15 13:45:30,2024-03-15 13:45:30+00\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDelimitedExport_SQLiteColumnTypes(t *testing.T) {
	rows, columns := queryFixture(t, "SELECT d FROM events",
		"CREATE TABLE events (d DATE)",
		"INSERT INTO events VALUES ('2024-03-15')",
	)

	var buf bytes.Buffer
	if _, err := Delimited().Export(rows, columns, &buf, ExportOptions{Delimiter: ","}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := "d\n2024-03-15\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestDelimitedExport_OneWritePerLine(t *testing.T) {
	rows, columns := queryFixture(t, dbtest.SamplesQuery, dbtest.Samples...)

	w := &countingWriter{}
	if _, err := Delimited().Export(rows, columns, w, ExportOptions{Delimiter: ","}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if w.writes != 4 {
		t.Errorf("Write called %d times, want 4 (header + 3 rows)", w.writes)
	}
	if w.String() != "col1,col2\nv1,v2\nv3,null\nv5,v6\n" {
		t.Errorf("output = %q", w.String())
	}
}
