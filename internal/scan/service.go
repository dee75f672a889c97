package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-scanner/internal/common"
	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
	"github.com/joseph-ayodele/receipts-scanner/internal/ocr"
)

// LineSource produces the ordered line sequence for one receipt image. It is
// the boundary to the external OCR engine.
type LineSource interface {
	Lines(ctx context.Context, path string) (ocr.Result, error)
}

// BatchSink receives the completed batch. Implemented by the store; nil sinks
// are skipped.
type BatchSink interface {
	SaveBatch(ctx context.Context, sessionID uuid.UUID, records []extract.Record) error
}

// RowWriter serializes finished rows. Implemented by the XLSX exporter.
type RowWriter interface {
	Write(path string, rows []extract.Row) error
}

// Config holds batch-orchestration settings.
type Config struct {
	Workers      int
	QueueSize    int
	ImageTimeout time.Duration
	XLSXPath     string
	RawLogPath   string
}

// Service drives one scan batch end to end: OCR and field extraction per
// image (parallel, independent), then a single deterministic fold that
// summarizes, exports and persists. Individual extractions share no mutable
// state; aggregation happens only after all of them complete.
type Service struct {
	source    LineSource
	extractor *extract.Extractor
	writer    RowWriter
	sink      BatchSink
	progress  *Progress
	logger    *slog.Logger

	workers      int
	queueSize    int
	imageTimeout time.Duration
	xlsxPath     string
	rawLogPath   string
}

func NewService(cfg Config, source LineSource, extractor *extract.Extractor, writer RowWriter, sink BatchSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	return &Service{
		source:       source,
		extractor:    extractor,
		writer:       writer,
		sink:         sink,
		progress:     NewProgress(),
		logger:       logger,
		workers:      cfg.Workers,
		queueSize:    cfg.QueueSize,
		imageTimeout: cfg.ImageTimeout,
		xlsxPath:     cfg.XLSXPath,
		rawLogPath:   cfg.RawLogPath,
	}
}

func (s *Service) Progress() Snapshot { return s.progress.Snapshot() }

// fileOutput is one image's extraction outcome plus the raw lines for the
// audit log.
type fileOutput struct {
	record extract.Record
	lines  []string
}

// Result is the outcome of one completed batch.
type Result struct {
	SessionID uuid.UUID
	Records   []extract.Record
	Failed    int
}

// Start launches a scan over the given images in a background goroutine.
// It returns common.ErrBusy when a scan is already running.
func (s *Service) Start(ctx context.Context, paths []string) error {
	if !s.progress.begin(len(paths)) {
		return common.ErrBusy
	}
	go func() {
		_, err := s.run(ctx, paths)
		s.progress.finish(err)
	}()
	return nil
}

// Run executes a scan synchronously (the CLI batch path).
func (s *Service) Run(ctx context.Context, paths []string) (Result, error) {
	if !s.progress.begin(len(paths)) {
		return Result{}, common.ErrBusy
	}
	res, err := s.run(ctx, paths)
	s.progress.finish(err)
	return res, err
}

func (s *Service) run(ctx context.Context, paths []string) (Result, error) {
	sessionID := uuid.New()
	start := time.Now()
	s.logger.Info("scan.start", "session_id", sessionID, "images", len(paths), "workers", s.workers)

	results := s.runPool(ctx, paths)
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	outputs := make([]fileOutput, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			// One bad decode never aborts the batch; the file is skipped.
			failed++
			s.logger.Error("scan.image.failed", "path", paths[r.index], "error", r.err)
			continue
		}
		outputs = append(outputs, r.out)
	}

	records := make([]extract.Record, 0, len(outputs))
	for _, out := range outputs {
		records = append(records, out.record)
	}

	// Deterministic fold: summary, export and persistence happen only after
	// every extraction has completed.
	if s.xlsxPath != "" && s.writer != nil && len(records) > 0 {
		if err := s.writer.Write(s.xlsxPath, extract.TableRows(records)); err != nil {
			return Result{}, fmt.Errorf("write workbook: %w", err)
		}
	}
	if s.rawLogPath != "" {
		if err := s.writeRawLog(outputs); err != nil {
			return Result{}, fmt.Errorf("write raw log: %w", err)
		}
	}
	if s.sink != nil && len(records) > 0 {
		if err := s.sink.SaveBatch(ctx, sessionID, records); err != nil {
			return Result{}, fmt.Errorf("persist batch: %w", err)
		}
	}

	s.logger.Info("scan.done",
		"session_id", sessionID,
		"processed", len(records),
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{SessionID: sessionID, Records: records, Failed: failed}, nil
}

func (s *Service) processImage(ctx context.Context, path string) (fileOutput, error) {
	res, err := s.source.Lines(ctx, path)
	if err != nil {
		return fileOutput{}, err
	}
	rec := s.extractor.Extract(res.Lines, filepath.Base(path))
	s.logger.Info("scan.image.ok",
		"file", rec.Filename,
		"vendor", rec.Vendor,
		"date", rec.Date,
		"currency", rec.Currency,
		"lines", len(res.Lines),
		"confidence", res.Confidence,
	)
	return fileOutput{record: rec, lines: res.Lines}, nil
}

// writeRawLog rewrites the audit log with every image's recognized lines,
// bracketed by start/end markers per file.
func (s *Service) writeRawLog(outputs []fileOutput) error {
	var b strings.Builder
	b.WriteString("=== OCR RAW DATA LOG ===\n")
	for _, out := range outputs {
		b.WriteString("\n--- START " + out.record.Filename + " ---\n")
		for _, line := range out.lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("--- END " + out.record.Filename + " ---\n")
	}
	return os.WriteFile(s.rawLogPath, []byte(b.String()), 0o644)
}
