package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-scanner/internal/export"
	"github.com/joseph-ayodele/receipts-scanner/internal/ingest"
	"github.com/joseph-ayodele/receipts-scanner/internal/scan"
	"github.com/joseph-ayodele/receipts-scanner/internal/server"
	"github.com/joseph-ayodele/receipts-scanner/internal/store"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload/scan HTTP server",
	Long: `Start the HTTP server backing the browser frontend.

Endpoints:
  POST /upload          multipart upload (files[] field)
  POST /reset           clear the current upload session
  POST /scan            start a background scan
  GET  /status          poll scan progress and incremental results
  GET  /sessions        list past scan batches
  GET  /download/excel  download the Excel report
  GET  /download/txt    download the raw OCR log

With --watch the upload directory is also watched, so images dropped in by
other means join the session automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := newLogger()
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		session, err := ingest.NewSession(cfg.Server.UploadDir, logger)
		if err != nil {
			return err
		}

		svc := scan.NewService(scan.Config{
			Workers:      cfg.Scan.Workers,
			QueueSize:    cfg.Scan.QueueSize,
			ImageTimeout: cfg.Scan.ImageTimeout,
			XLSXPath:     cfg.Export.XLSXPath,
			RawLogPath:   cfg.Export.RawLogPath,
		}, newOCR(cfg, logger), ex, export.NewWriter(logger), repo, logger)

		if serveWatch {
			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Root:        cfg.Server.UploadDir,
				InitialScan: true,
			}, logger)
			if err != nil {
				return err
			}
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case path, ok := <-events:
						if !ok {
							return
						}
						session.Track(path)
					case err, ok := <-errs:
						if !ok {
							return
						}
						logger.Warn("ingest.watch.error", "error", err)
					}
				}
			}()
		}

		h := server.NewHandler(session, svc, repo, logger)
		srv := server.New(server.Config{
			Addr:       cfg.Server.Addr,
			XLSXPath:   cfg.Export.XLSXPath,
			RawLogPath: cfg.Export.RawLogPath,
		}, h, logger)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "watch the upload directory for new images")
}
