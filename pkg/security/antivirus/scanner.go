package antivirus

import (
	"context"
)

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool   // True if malware was detected
	ThreatName  string // Name of detected threat (empty if clean)
	ScannerName string // Name of scanner that produced this result
	Error       error  // Any error that occurred during scanning
}

// Scanner checks uploaded documents for malware.
// Implementations fail closed: an Error always comes with Infected=true.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every file clean. Used when CLAMAV_ADDRESS is unset.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

// New picks ClamAV when an address is configured
func New(address string) Scanner {
	if address == "" {
		return NewNoOpScanner()
	}
	return NewClamAVScanner(address, 0)
}
