package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
)

const sheetName = "Receipts"

var headers = []string{"filename", "vendor", "location", "date", "total", "currency"}

// Writer renders extraction rows into an XLSX workbook. When the workbook
// cannot be written to disk it falls back to a CSV file next to it, so a
// batch never loses its results over a spreadsheet problem.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Write overwrites path with a workbook holding the given rows. Each call
// replaces the previous export so the file always reflects the last batch.
func (w *Writer) Write(path string, rows []extract.Row) error {
	start := time.Now()

	buf, err := w.Bytes(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		csvPath := csvFallbackPath(path)
		w.logger.Warn("export.xlsx.failed", "path", path, "error", err, "fallback", csvPath)
		if csvErr := w.writeCSV(csvPath, rows); csvErr != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	}

	w.logger.Info("export.xlsx.ok",
		"path", path,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Bytes returns the workbook for the given rows as XLSX bytes.
func (w *Writer) Bytes(rows []extract.Row) ([]byte, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 && sheetName != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range rows {
		write := func(col int, v string) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, r.Filename)
		write(2, r.Vendor)
		write(3, r.Location)
		write(4, r.Date)
		write(5, r.Total)
		write(6, r.Currency)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28) // filename
	_ = f.SetColWidth(sheetName, "B", "B", 26) // vendor
	_ = f.SetColWidth(sheetName, "C", "C", 40) // location
	_ = f.SetColWidth(sheetName, "D", "D", 14) // date
	_ = f.SetColWidth(sheetName, "E", "F", 10) // total, currency

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) writeCSV(path string, rows []extract.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Filename, r.Vendor, r.Location, r.Date, r.Total, r.Currency}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	w.logger.Info("export.csv.ok", "path", path, "rows", len(rows))
	return nil
}

func csvFallbackPath(xlsxPath string) string {
	if strings.HasSuffix(xlsxPath, ".xlsx") {
		return strings.TrimSuffix(xlsxPath, ".xlsx") + ".csv"
	}
	return xlsxPath + ".csv"
}
