package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
)

func sampleRows() []extract.Row {
	return []extract.Row{
		{Filename: "a.jpg", Vendor: "ACME S.P.A", Location: "VIA ROMA 10 20100 MILANO (MI)", Date: "23/05/2023", Total: "12.50", Currency: "EUR"},
		{Filename: "b.jpg", Vendor: "Joe's Diner", Location: "null", Date: "(30/08/2026)", Total: "8.00", Currency: "USD"},
		{},
		{Vendor: "TOTALE EUR", Total: "12.50", Currency: "EUR"},
		{Vendor: "TOTALE USD", Total: "8.00", Currency: "USD"},
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := w.Write(path, sampleRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) < 1 {
		t.Fatal("workbook has no rows")
	}
	for i, h := range headers {
		if got[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, got[0][i], h)
		}
	}
	if got[1][1] != "ACME S.P.A" || got[1][5] != "EUR" {
		t.Fatalf("data row = %v", got[1])
	}
	// The summary block sits after the separator row.
	last := got[len(got)-1]
	if last[1] != "TOTALE USD" || last[4] != "8.00" {
		t.Fatalf("summary row = %v", last)
	}
}

func TestWriter_BytesSingleSheet(t *testing.T) {
	t.Parallel()

	buf, err := NewWriter(nil).Bytes(sampleRows())
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != sheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, sheetName)
	}
}

func TestWriter_CSVFallback(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	dir := t.TempDir()
	// A directory at the target path makes the workbook write fail.
	badPath := filepath.Join(dir, "taken")
	if err := os.Mkdir(badPath, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(badPath, sampleRows()); err != nil {
		t.Fatalf("Write() error = %v, want csv fallback", err)
	}
	got, err := os.ReadFile(badPath + ".csv")
	if err != nil {
		t.Fatalf("csv fallback missing: %v", err)
	}
	if !bytes.Contains(got, []byte("ACME S.P.A")) {
		t.Fatalf("csv content = %q", got)
	}
}
