package constants

// ScanStatus is the lifecycle state of a scan session.
type ScanStatus string

// Stable values (these exact strings are stored and served to clients).
const (
	ScanStatusIdle    ScanStatus = "IDLE"
	ScanStatusRunning ScanStatus = "RUNNING"
	ScanStatusDone    ScanStatus = "DONE"
	ScanStatusFailed  ScanStatus = "FAILED"
)
