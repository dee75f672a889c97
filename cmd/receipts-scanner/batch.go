package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-scanner/constants"
	"github.com/joseph-ayodele/receipts-scanner/internal/export"
	"github.com/joseph-ayodele/receipts-scanner/internal/scan"
	"github.com/joseph-ayodele/receipts-scanner/internal/store"
)

var (
	batchDir string
	batchOut string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scan a directory of receipt images and write the Excel report",
	Long: `Scan every supported image in a directory in one synchronous run.

The report lands next to the raw OCR log; the batch is also recorded in the
scan history database.

Examples:
  receipts-scanner batch --dir ./images_to_read
  receipts-scanner batch --dir ./images_to_read --out /tmp/report.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchDir == "" {
			return fmt.Errorf("--dir is required")
		}

		logger := newLogger()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if batchOut != "" {
			cfg.Export.XLSXPath = batchOut
		}

		ex, err := newExtractor(cfg, logger)
		if err != nil {
			return err
		}

		db, err := store.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close(db, logger)
		repo := store.NewReceiptRepository(db, logger)

		paths, err := listImages(batchDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no supported images in %s", batchDir)
		}

		svc := scan.NewService(scan.Config{
			Workers:      cfg.Scan.Workers,
			QueueSize:    cfg.Scan.QueueSize,
			ImageTimeout: cfg.Scan.ImageTimeout,
			XLSXPath:     cfg.Export.XLSXPath,
			RawLogPath:   cfg.Export.RawLogPath,
		}, newOCR(cfg, logger), ex, export.NewWriter(logger), repo, logger)

		res, err := svc.Run(ctx, paths)
		if err != nil {
			return err
		}
		fmt.Printf("Processed %d receipts (%d failed), report: %s\n",
			len(res.Records), res.Failed, cfg.Export.XLSXPath)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of receipt images (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output XLSX path (default from config)")
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if constants.IsImageExt(constants.NormalizeExt(filepath.Ext(e.Name()))) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
