package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-scanner/internal/common"
	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
	"github.com/joseph-ayodele/receipts-scanner/internal/ocr"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "receipts-scanner",
	Short: "OCR receipt scanner with field extraction and Excel reporting",
	Long: `receipts-scanner reads receipt photos, recognizes their text with
Tesseract, and extracts vendor, date, location, total and currency using
locale-aware heuristics for Italian and US receipts.

Results land in an Excel workbook with per-currency summary rows, a raw
OCR audit log, and a SQLite history of past scan batches.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.receipts-scanner/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(batchCmd)
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newExtractor builds the field extractor, applying keyword-table overrides
// when a tables file is configured.
func newExtractor(cfg *common.Config, logger *slog.Logger) (*extract.Extractor, error) {
	ex := extract.NewExtractor(extract.Config{
		TotalLookahead: cfg.Extract.TotalLookahead,
		TailWindow:     cfg.Extract.TailWindow,
	})
	if cfg.Extract.TablesPath != "" {
		overrides, err := extract.LoadOverrides(cfg.Extract.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("load keyword tables: %w", err)
		}
		ex.ApplyOverrides(overrides)
		logger.Info("extract.tables.loaded", "path", cfg.Extract.TablesPath)
	}
	return ex, nil
}

func newOCR(cfg *common.Config, logger *slog.Logger) *ocr.Extractor {
	return ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		Languages:           cfg.OCR.Languages,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
	}, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, werr := fmt.Fprintln(os.Stderr, "Error:", err); werr != nil {
			fmt.Println("Error:", err)
		}
		os.Exit(1)
	}
}
