package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-scanner/constants"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages   string // tesseract -l value, default "ita+eng"
	TessdataDir string

	PSM int // 6 is good for the uniform text block of a receipt
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
}

// Result is one recognized receipt image: the ordered line sequence plus a
// confidence estimate for the decode.
type Result struct {
	Lines      []string
	Confidence float32
	Duration   time.Duration
}

// Extractor shells out to tesseract and turns its output into the ordered
// line sequence the field extractors consume. No bounding-box or geometry
// data survives this boundary.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "ita+eng"
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// Lines recognizes one image. Blank lines are dropped; line order is
// preserved top to bottom as tesseract emits it.
func (e *Extractor) Lines(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsImageExt(ext) {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	lines := splitLines(txt)

	conf := heuristicConfidence(strings.Join(lines, "\n"))
	if e.cfg.EnableTSVConfidence {
		if tsvConf, err := e.tsvConfidence(ctx, path); err == nil && tsvConf > 0 {
			conf = 0.7*tsvConf + 0.3*conf
		} else if err != nil {
			e.logger.Warn("tsv confidence unavailable", "path", path, "error", err)
		}
	}
	if conf > 1.0 {
		conf = 1.0
	}

	res := Result{Lines: lines, Confidence: conf, Duration: time.Since(start)}
	e.logger.Debug("ocr.lines", "path", path, "lines", len(lines),
		"confidence", conf, "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// tsvConfidence reruns tesseract in TSV mode and returns the mean word
// confidence scaled to 0..1.
func (e *Extractor) tsvConfidence(ctx context.Context, path string) (float32, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 512))
	}

	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || ln == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10] // "conf" column; -1 marks non-word rows
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float32(sum / n / 100.0), nil
}

func splitLines(txt string) []string {
	var out []string
	for _, ln := range strings.Split(strings.ReplaceAll(txt, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
