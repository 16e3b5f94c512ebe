package export

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigurra/tempus/cmd/check"
	"github.com/gigurra/tempus/cmd/common/schema"
	"github.com/parquet-go/parquet-go"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("TEMPUS_CONFIG", filepath.Join(t.TempDir(), "config.json"))
}

// readBack returns every row of the parquet file at path keyed by column name.
// Null values are absent.
func readBack(t *testing.T, path string) ([]map[string]int64, *parquet.File) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	stat, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		t.Fatal(err)
	}

	names := map[int]string{}
	for i, path := range pf.Schema().Columns() {
		names[i] = strings.Join(path, ".")
	}

	pq := parquet.NewReader(pf) //nolint:staticcheck
	defer pq.Close()
	rows := make([]parquet.Row, pf.NumRows())
	n, err := pq.ReadRows(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatal(err)
	}

	var out []map[string]int64
	for _, row := range rows[:n] {
		m := map[string]int64{}
		for _, v := range row {
			if v.IsNull() {
				continue
			}
			if v.Kind() == parquet.Int32 {
				m[names[v.Column()]] = int64(v.Int32())
			} else {
				m[names[v.Column()]] = v.Int64()
			}
		}
		out = append(out, m)
	}
	return out, pf
}

func TestRunExport(t *testing.T) {
	isolateConfig(t)
	out := filepath.Join(t.TempDir(), "events.parquet")

	var stdout, stderr bytes.Buffer
	err := runExport(&Params{
		Data:        "testdata/events.jsonl",
		Schema:      "testdata/events.schema",
		Out:         out,
		Compression: "zstd",
	}, nil, &stdout, &stderr)
	if !errors.Is(err, ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	if err.Error() != "3 fields: some fields failed and were written as null" {
		t.Errorf("error = %q", err)
	}
	if stdout.String() != "wrote 3 rows to "+out+"\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	for _, want := range []string{"1.ttl\n", "2.day\n", "2.opens\n"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr.String())
		}
	}

	rows, pf := readBack(t, out)
	expected := []map[string]int64{
		{"record": 0, "day": 19724, "opens": 30_600_000_000, "at": 1_704_099_600_000_000, "ttl": 3_600_000_000},
		{"record": 1, "day": -1, "opens": 3_600_000_000, "at": 0},
		{"record": 2, "at": 1_577_836_800_000_000, "ttl": -1_500_000},
	}
	if len(rows) != len(expected) {
		t.Fatalf("read %d rows, want %d", len(rows), len(expected))
	}
	for i := range expected {
		if len(rows[i]) != len(expected[i]) {
			t.Errorf("row %d = %v, want %v", i, rows[i], expected[i])
			continue
		}
		for k, v := range expected[i] {
			if rows[i][k] != v {
				t.Errorf("row %d %s = %d, want %d", i, k, rows[i][k], v)
			}
		}
	}

	meta, ok := pf.Lookup("tempus.schema")
	if !ok || !strings.Contains(meta, "ttl: duration(le=P1D)") {
		t.Errorf("schema metadata = %q", meta)
	}
}

func TestRunExport_Strict(t *testing.T) {
	isolateConfig(t)
	out := filepath.Join(t.TempDir(), "events.parquet")

	var stdout, stderr bytes.Buffer
	err := runExport(&Params{
		Data:        "testdata/events.jsonl",
		Schema:      "testdata/events.schema",
		Out:         out,
		Compression: "none",
		Strict:      true,
	}, nil, &stdout, &stderr)
	if !errors.Is(err, check.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("strict export should not write a file")
	}
	if !strings.Contains(stderr.String(), "2 of 3 records invalid") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRunExport_Valid(t *testing.T) {
	isolateConfig(t)
	out := filepath.Join(t.TempDir(), "one.parquet")

	var stdout, stderr bytes.Buffer
	err := runExport(&Params{
		Schema:      "testdata/events.schema",
		Out:         out,
		Compression: "snappy",
	}, strings.NewReader(`{"day": 0, "opens": "00:00:01.5", "at": "1970-01-01T00:00:00Z", "ttl": "-PT1S"}`), &stdout, &stderr)
	if err != nil {
		t.Fatalf("runExport failed: %v\n%s", err, stderr.String())
	}
	rows, _ := readBack(t, out)
	if len(rows) != 1 || rows[0]["opens"] != 1_500_000 || rows[0]["ttl"] != -1_000_000 || rows[0]["day"] != 0 {
		t.Errorf("rows = %v", rows)
	}
}

func TestRunExport_BadCompression(t *testing.T) {
	isolateConfig(t)
	err := runExport(&Params{Schema: "testdata/events.schema", Out: "x.parquet", Compression: "rar"}, nil, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), `unknown compression "rar"`) {
		t.Errorf("err = %v", err)
	}
}

func TestNewLayout_ReservedName(t *testing.T) {
	s, err := schema.Parse("reserved.schema", "record: date\n")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewLayout(s); err == nil {
		t.Error("a field named record should be rejected")
	}
}
