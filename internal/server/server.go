package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds the HTTP listener settings and the file locations the
// download endpoints serve.
type Config struct {
	Addr       string
	XLSXPath   string
	RawLogPath string
}

// Server is a thin wrapper over chi plus the stdlib http.Server. It exposes
// the upload/scan/status cycle and the report downloads.
type Server struct {
	cfg     Config
	handler *Handler
	logger  *slog.Logger
	srv     *http.Server
}

func New(cfg Config, h *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	s := &Server{cfg: cfg, handler: h, logger: logger}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router. Exported so tests can drive it with httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/upload", s.handler.Upload)
	r.Post("/reset", s.handler.Reset)
	r.Post("/scan", s.handler.Scan)
	r.Get("/status", s.handler.Status)
	r.Get("/sessions", s.handler.Sessions)
	r.Get("/sessions/{id}", s.handler.SessionReceipts)
	r.Get("/download/excel", s.download(s.cfg.XLSXPath, "receipts_data.xlsx"))
	r.Get("/download/txt", s.download(s.cfg.RawLogPath, "ocr_raw_data.txt"))
	return r
}

// Run starts the server and blocks until it stops.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listening", "addr", s.cfg.Addr)
		errCh <- s.srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
