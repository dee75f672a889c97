package scan

import (
	"sync"

	"github.com/joseph-ayodele/receipts-scanner/constants"
	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
)

// Progress tracks the state of the current scan so clients can poll for
// updates. All access goes through the mutex; Snapshot returns a copy.
type Progress struct {
	mu       sync.Mutex
	status   constants.ScanStatus
	total    int
	current  int
	results  []extract.Row
	errorMsg string
}

// Snapshot is a point-in-time copy of the scan state, shaped for the
// status-polling endpoint.
type Snapshot struct {
	IsScanning bool                 `json:"is_scanning"`
	Status     constants.ScanStatus `json:"status"`
	Total      int                  `json:"total"`
	Current    int                  `json:"current"`
	Results    []extract.Row        `json:"results"`
	Error      string               `json:"error,omitempty"`
}

func NewProgress() *Progress {
	return &Progress{status: constants.ScanStatusIdle}
}

// begin marks a scan as running. It returns false when one is already in
// flight.
func (p *Progress) begin(total int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == constants.ScanStatusRunning {
		return false
	}
	p.status = constants.ScanStatusRunning
	p.total = total
	p.current = 0
	p.results = nil
	p.errorMsg = ""
	return true
}

func (p *Progress) step(row extract.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.results = append(p.results, row)
}

// stepFailed advances the attempted-file counter when an image produced no
// result row.
func (p *Progress) stepFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
}

func (p *Progress) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status = constants.ScanStatusFailed
		p.errorMsg = err.Error()
		return
	}
	p.status = constants.ScanStatusDone
}

// Running reports whether a scan is currently in flight.
func (p *Progress) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == constants.ScanStatusRunning
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		IsScanning: p.status == constants.ScanStatusRunning,
		Status:     p.status,
		Total:      p.total,
		Current:    p.current,
		Results:    append([]extract.Row(nil), p.results...),
		Error:      p.errorMsg,
	}
}
