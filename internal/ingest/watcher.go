package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/receipts-scanner/constants"
)

// WatchConfig configures directory watching for auto-ingest.
type WatchConfig struct {
	Root        string        // upload directory to watch
	InitialScan bool          // if true, walk the root and emit existing images
	Debounce    time.Duration // coalesce rapid create/write bursts
}

// StartWatcher emits the path of every supported image dropped into the
// upload directory until ctx is cancelled. Events for partially written
// files are debounced so a path is emitted once the writes settle.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("no root provided")
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		logger.Error("failed to watch root", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	if cfg.InitialScan {
		walkErr := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && allowedImage(path) {
				select {
				case evCh <- path:
				default:
				}
			}
			return nil
		})
		if walkErr != nil {
			_ = w.Close()
			return nil, nil, walkErr
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if cerr := w.Close(); cerr != nil {
				logger.Warn("watcher close failed", "error", cerr)
			}
		}()

		var (
			mu      sync.Mutex
			timer   *time.Timer
			pending = map[string]struct{}{}
		)

		// Called from both the event loop and the debounce timer goroutine.
		sendPending := func() {
			mu.Lock()
			defer mu.Unlock()
			for p := range pending {
				select {
				case evCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if !allowedImage(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				pending[e.Name] = struct{}{}
				mu.Unlock()
				if cfg.Debounce > 0 {
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(cfg.Debounce, sendPending)
				} else {
					sendPending()
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", werr)
				select {
				case errCh <- werr:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func allowedImage(path string) bool {
	return constants.IsImageExt(constants.NormalizeExt(filepath.Ext(path)))
}
