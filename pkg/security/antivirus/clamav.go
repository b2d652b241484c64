package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ClamAVScanner talks to clamd over TCP or a unix socket
type ClamAVScanner struct {
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner.
// address is "host:3310" or an absolute unix socket path.
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{
		address: address,
		timeout: timeout,
	}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends PING and expects PONG
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(buf[:n]), "PONG")
}

// Scan streams data with the zINSTREAM command
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}
	fail := func(err error) ScanResult {
		result.Infected = true
		result.Error = err
		return result
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to clamd: %w", err))
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fail(fmt.Errorf("failed to send command: %w", err))
	}

	// Chunk: big-endian uint32 length, then payload. A zero length ends the stream.
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(data)))
	if _, err := conn.Write(size); err != nil {
		return fail(fmt.Errorf("failed to send size: %w", err))
	}
	if _, err := conn.Write(data); err != nil {
		return fail(fmt.Errorf("failed to send file data: %w", err))
	}
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return fail(fmt.Errorf("failed to send end marker: %w", err))
	}

	response := make([]byte, 1024)
	n, err := conn.Read(response)
	if err != nil && err != io.EOF {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	return parseResponse(result, strings.TrimRight(string(response[:n]), "\x00\n "))
}

// parseResponse reads "stream: OK", "stream: <name> FOUND" or "... ERROR"
func parseResponse(result ScanResult, resp string) ScanResult {
	switch {
	case strings.HasSuffix(resp, "FOUND"):
		result.Infected = true
		if parts := strings.SplitN(resp, ":", 2); len(parts) == 2 {
			result.ThreatName = strings.TrimSuffix(strings.TrimSpace(parts[1]), " FOUND")
		}
	case strings.HasSuffix(resp, "OK"):
	default:
		result.Infected = true
		result.Error = fmt.Errorf("scan error: %s", resp)
	}
	return result
}
