package scan

import (
	"context"
	"sync"
)

// imageJob is the unit handed to a worker: one image path plus its slot in
// the order-preserving result slice.
type imageJob struct {
	index int
	path  string
}

type imageResult struct {
	index int
	out   fileOutput
	err   error
}

// runPool fans a batch of images out to workers and collects results back
// into input order. Each image gets its own timeout-bounded context; a
// per-image failure is recorded, never propagated, so one bad decode cannot
// abort the batch.
func (s *Service) runPool(ctx context.Context, paths []string) []imageResult {
	buf := s.queueSize
	if buf > len(paths) {
		buf = len(paths)
	}
	jobs := make(chan imageJob, buf)
	resCh := make(chan imageResult, len(paths))

	workers := s.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.logger.Debug("scan.worker.started", "worker_id", workerID)
			for job := range jobs {
				jobCtx := ctx
				var cancel context.CancelFunc = func() {}
				if s.imageTimeout > 0 {
					jobCtx, cancel = context.WithTimeout(ctx, s.imageTimeout)
				}
				out, err := s.processImage(jobCtx, job.path)
				cancel()
				resCh <- imageResult{index: job.index, out: out, err: err}
			}
			s.logger.Debug("scan.worker.stopped", "worker_id", workerID)
		}(i + 1)
	}

	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- imageJob{index: i, path: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Progress advances here, per completed image, so status polls see the
	// batch move while later images are still in flight.
	results := make([]imageResult, 0, len(paths))
	for range paths {
		select {
		case r := <-resCh:
			if r.err != nil {
				s.progress.stepFailed()
			} else {
				s.progress.step(r.out.record.Row())
			}
			results = append(results, r)
		case <-ctx.Done():
			wg.Wait()
			return results
		}
	}
	wg.Wait()
	return results
}
