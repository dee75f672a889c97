package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/receipts-scanner/internal/export"
	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
	"github.com/joseph-ayodele/receipts-scanner/internal/ingest"
	"github.com/joseph-ayodele/receipts-scanner/internal/ocr"
	"github.com/joseph-ayodele/receipts-scanner/internal/scan"
	"github.com/joseph-ayodele/receipts-scanner/internal/store"
)

type fixedSource struct {
	lines []string
}

func (f *fixedSource) Lines(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Lines: f.lines, Confidence: 0.9}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	uploadDir := filepath.Join(dir, "uploads")
	xlsxPath := filepath.Join(dir, "receipts_data.xlsx")
	rawPath := filepath.Join(dir, "ocr_raw_data.txt")

	session, err := ingest.NewSession(uploadDir, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	db, err := store.Open(context.Background(), filepath.Join(dir, "receipts.db"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := store.NewReceiptRepository(db, nil)

	source := &fixedSource{lines: []string{"ACME S.P.A", "VIA ROMA 10", "TOTALE", "12,50"}}
	svc := scan.NewService(scan.Config{
		Workers:    2,
		XLSXPath:   xlsxPath,
		RawLogPath: rawPath,
	}, source, extract.NewExtractor(extract.Config{}), export.NewWriter(nil), repo, nil)

	h := NewHandler(session, svc, repo, nil)
	srv := New(Config{XLSXPath: xlsxPath, RawLogPath: rawPath}, h, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, dir
}

func multipartBody(t *testing.T, field string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestUploadAndScanCycle(t *testing.T) {
	ts, dir := newTestServer(t)

	body, ctype := multipartBody(t, "files[]", "a.jpg", "b.png")
	resp, err := http.Post(ts.URL+"/upload", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	got := decodeJSON(t, resp)
	if got["status"] != "success" || got["count"] != float64(2) {
		t.Fatalf("upload response = %v", got)
	}

	resp, err = http.Post(ts.URL+"/scan", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeJSON(t, resp); got["status"] != "success" {
		t.Fatalf("scan response = %v", got)
	}

	// Poll until the background scan settles.
	deadline := time.After(5 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/status")
		if err != nil {
			t.Fatal(err)
		}
		st := decodeJSON(t, resp)
		if st["is_scanning"] == false && st["total"] == float64(2) {
			results, ok := st["results"].([]any)
			if !ok || len(results) != 2 {
				t.Fatalf("status results = %v", st["results"])
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("scan never finished")
		case <-time.After(20 * time.Millisecond):
		}
	}

	// The fold wrote both report files.
	if _, err := os.Stat(filepath.Join(dir, "receipts_data.xlsx")); err != nil {
		t.Fatalf("workbook missing: %v", err)
	}
	resp, err = http.Get(ts.URL + "/download/txt")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download/txt status = %d", resp.StatusCode)
	}
	var raw bytes.Buffer
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(raw.String(), "=== OCR RAW DATA LOG ===") {
		t.Fatalf("raw log content = %q", raw.String())
	}

	// Persistence is queryable through the sessions endpoints.
	resp, err = http.Get(ts.URL + "/sessions")
	if err != nil {
		t.Fatal(err)
	}
	sess := decodeJSON(t, resp)
	list, ok := sess["sessions"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("sessions = %v", sess)
	}
	id := list[0].(map[string]any)["id"].(string)
	resp, err = http.Get(ts.URL + "/sessions/" + id)
	if err != nil {
		t.Fatal(err)
	}
	rcpts := decodeJSON(t, resp)
	if rows, ok := rcpts["receipts"].([]any); !ok || len(rows) != 2 {
		t.Fatalf("receipts = %v", rcpts)
	}
}

func TestUploadRejectsMissingFilesField(t *testing.T) {
	ts, _ := newTestServer(t)

	body, ctype := multipartBody(t, "wrong[]", "a.jpg")
	resp, err := http.Post(ts.URL+"/upload", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := decodeJSON(t, resp); got["status"] != "error" || got["message"] != "No files part" {
		t.Fatalf("body = %v", got)
	}
}

func TestResetClearsUploads(t *testing.T) {
	ts, _ := newTestServer(t)

	body, ctype := multipartBody(t, "files[]", "a.jpg")
	resp, err := http.Post(ts.URL+"/upload", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	_ = decodeJSON(t, resp)

	resp, err = http.Post(ts.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeJSON(t, resp); got["status"] != "success" {
		t.Fatalf("reset response = %v", got)
	}

	// A scan after reset has nothing to do.
	resp, err = http.Post(ts.URL+"/scan", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeJSON(t, resp); got["status"] != "success" {
		t.Fatalf("scan response = %v", got)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/download/excel")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
