package csv

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"salesclean/internal/datasource"
	"salesclean/internal/datasource/file"
	"salesclean/internal/transformer/builtin"
	"salesclean/pkg/records"
)

func cleanedTable() *records.Table {
	return &records.Table{
		Columns: []string{"product_name", "price", "qty", "date"},
		Rows: []records.Row{
			{Line: 2, Cells: []records.Value{
				records.Text("Widget A"),
				records.Number(decimal.RequireFromString("9.99")),
				records.Number(decimal.NewFromInt(3)),
				records.Date(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)),
			}},
			{Line: 3, Cells: []records.Value{
				records.Text("Comma, Inc"),
				records.Number(decimal.RequireFromString("1000")),
				records.Number(decimal.NewFromInt(1)),
				records.Date(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)),
			}},
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestWrite_RendersHeaderAndRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := Write(&buf, cleanedTable(), Options{})
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v; want 2, nil", n, err)
	}

	want := "product_name,price,qty,date\n" +
		"Widget A,9.99,3,2024-01-07\n" +
		"\"Comma, Inc\",1000,1,2023-12-25\n"
	if buf.String() != want {
		t.Fatalf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWrite_MissingAndCustomComma(t *testing.T) {
	t.Parallel()

	tbl := &records.Table{
		Columns: []string{"a", "b"},
		Rows:    []records.Row{{Cells: []records.Value{records.Missing(), records.Text("x")}}},
	}
	var buf bytes.Buffer
	if _, err := Write(&buf, tbl, Options{Comma: ';'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "a;b\n;x\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestWriteTo_File(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "processed", "sales_data_clean.csv")
	n, err := WriteTo(context.Background(), file.NewLocal(dst), cleanedTable(), Options{})
	if err != nil || n != 2 {
		t.Fatalf("WriteTo = %d, %v; want 2, nil", n, err)
	}
	if got := readFile(t, dst); !strings.Contains(got, "Widget A,9.99,3,2024-01-07") {
		t.Fatalf("file = %q", got)
	}
}

func TestWriteTo_UnwritableDestination(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	if _, err := WriteTo(context.Background(), file.NewLocal(filepath.Join(blocker, "out.csv")), cleanedTable(), Options{}); err == nil {
		t.Fatalf("expected error writing below a regular file")
	}
}

// failingSink hands out a destination whose writes always fail.
type failingSink struct{ aborted bool }

func (s *failingSink) Create(context.Context) (datasource.WriteAborter, error) { return s, nil }
func (s *failingSink) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (s *failingSink) Close() error { return nil }
func (s *failingSink) Abort() error { s.aborted = true; return nil }

func TestWriteTo_AbortsOnWriteFailure(t *testing.T) {
	t.Parallel()

	s := &failingSink{}
	_, err := WriteTo(context.Background(), s, cleanedTable(), Options{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want disk full", err)
	}
	if !s.aborted {
		t.Fatalf("destination should be aborted")
	}
}

func TestRejectLog_WritesRawCells(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "rejects.csv")
	log, err := NewRejectLog(context.Background(), file.NewLocal(dst), []string{"product", "price"}, Options{})
	if err != nil {
		t.Fatalf("NewRejectLog: %v", err)
	}

	log.Add(builtin.RejectedRow{
		Line:   3,
		Stage:  "require",
		Reason: `required field "price" missing`,
		Row:    records.Row{Line: 3, Cells: []records.Value{records.Text("b"), records.MissingFrom("abc")}},
	})
	log.Add(builtin.RejectedRow{
		Line:   4,
		Stage:  "positive",
		Reason: `field "price": "-5" not greater than zero`,
		Row:    records.Row{Line: 4, Cells: []records.Value{records.Text("a"), records.Number(decimal.NewFromInt(-5))}},
	})
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "stage,reason,line,product,price\n" +
		"require,\"required field \"\"price\"\" missing\",3,b,abc\n" +
		"positive,\"field \"\"price\"\": \"\"-5\"\" not greater than zero\",4,a,-5\n"
	if got := readFile(t, dst); got != want {
		t.Fatalf("rejects =\n%s\nwant\n%s", got, want)
	}
	if got := log.Counts(); !reflect.DeepEqual(got, map[string]int{"require": 1, "positive": 1}) {
		t.Fatalf("Counts = %v", got)
	}
}

func TestRejectLog_AbortLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, err := NewRejectLog(context.Background(), file.NewLocal(filepath.Join(dir, "rejects.csv")), []string{"price"}, Options{})
	if err != nil {
		t.Fatalf("NewRejectLog: %v", err)
	}
	log.Add(builtin.RejectedRow{Line: 2, Stage: "positive", Row: records.Row{Cells: []records.Value{records.Text("0")}}})
	if err := log.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("aborted sidecar left %d files behind", len(entries))
	}
}
